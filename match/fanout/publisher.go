// match/fanout/publisher.go
package fanout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stricker-gg/go-services/shared/models"
	sharedredis "github.com/stricker-gg/go-services/shared/redis"
)

// Publisher broadcasts match events over Redis pub/sub. Connected clients
// subscribe to their match's channel; the slow polling fallback is the plain
// snapshot endpoint, so delivery here is best-effort.
type Publisher struct {
	client *redis.ClusterClient
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(client *redis.ClusterClient) *Publisher {
	return &Publisher{
		client: client,
	}
}

// Publish sends one event envelope on the match's channel.
func (p *Publisher) Publish(ctx context.Context, event models.MatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s for match %s: %w", event.Type, event.MatchID, err)
	}

	channel := fmt.Sprintf(sharedredis.MatchEventChannel, event.MatchID)
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event %s for match %s: %w", event.Type, event.MatchID, err)
	}
	return nil
}
