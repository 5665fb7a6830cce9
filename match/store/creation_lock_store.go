// match/store/creation_lock_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	sharedredis "github.com/stricker-gg/go-services/shared/redis"
)

// CreationLockStore guards match creation per squad pairing with a short
// Redis lock, so a doubled pairing event cannot open two matches.
type CreationLockStore struct {
	client *redis.ClusterClient
}

// NewCreationLockStore creates a new CreationLockStore instance.
func NewCreationLockStore(client *redis.ClusterClient) *CreationLockStore {
	return &CreationLockStore{
		client: client,
	}
}

// Acquire takes the creation lock for a pairing key. Returns false when
// another creation currently holds it.
func (cs *CreationLockStore) Acquire(ctx context.Context, pairingKey string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf(sharedredis.MatchLockKeyPrefix, pairingKey)
	ok, err := cs.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire creation lock for %s: %w", pairingKey, err)
	}
	return ok, nil
}

// Release drops the creation lock for a pairing key.
func (cs *CreationLockStore) Release(ctx context.Context, pairingKey string) error {
	key := fmt.Sprintf(sharedredis.MatchLockKeyPrefix, pairingKey)
	if err := cs.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release creation lock for %s: %w", pairingKey, err)
	}
	return nil
}
