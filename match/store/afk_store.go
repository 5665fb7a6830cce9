// match/store/afk_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	sharedredis "github.com/stricker-gg/go-services/shared/redis"
)

// AfkCooldownStore tracks the per-team cooldown between AFK reports as Redis
// TTL keys, so the limit holds across service instances and restarts.
type AfkCooldownStore struct {
	client *redis.ClusterClient
}

// NewAfkCooldownStore creates a new AfkCooldownStore instance.
func NewAfkCooldownStore(client *redis.ClusterClient) *AfkCooldownStore {
	return &AfkCooldownStore{
		client: client,
	}
}

// TryArm starts the cooldown window for a team. SetNX makes the check and the
// arm one atomic step, so of two concurrent reports only one gets true.
func (as *AfkCooldownStore) TryArm(ctx context.Context, matchID string, team int, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf(sharedredis.AfkCooldownKeyPrefix, matchID, team)
	armed, err := as.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to arm AFK cooldown for match %s team %d: %w", matchID, team, err)
	}
	return armed, nil
}

// Disarm releases the cooldown early, for reports that were rejected after the
// window was claimed.
func (as *AfkCooldownStore) Disarm(ctx context.Context, matchID string, team int) error {
	key := fmt.Sprintf(sharedredis.AfkCooldownKeyPrefix, matchID, team)
	if err := as.client.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to disarm AFK cooldown for match %s team %d: %w", matchID, team, err)
	}
	return nil
}
