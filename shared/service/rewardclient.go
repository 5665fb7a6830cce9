// shared/service/rewardclient.go
package service

import (
	"context"
	"fmt"

	"github.com/stricker-gg/go-services/shared/api"
)

// RewardServiceClient is a client for the Reward/Ranking Service. It is
// invoked once, asynchronously, when a match completes. Failures are logged
// and retried by the reward service itself, never by the match core.
type RewardServiceClient struct {
	apiClient *api.Client
}

// NewRewardClient creates a new Reward Service client.
func NewRewardClient(baseURL string) *RewardServiceClient {
	return &RewardServiceClient{
		apiClient: api.NewClient(baseURL, api.NewDefaultHTTPClient()),
	}
}

// ParticipantShare describes one player's participation in a completed match.
type ParticipantShare struct {
	UserID   string `json:"userId"`
	Team     int    `json:"team"`
	IsHelper bool   `json:"isHelper"`
	IsFake   bool   `json:"isFake"`
}

// DistributeRewardsRequest is the payload sent to the reward service.
type DistributeRewardsRequest struct {
	MatchID      string             `json:"matchId"`
	Winner       int                `json:"winner"`
	MVPPlayer    string             `json:"mvpPlayer,omitempty"`
	MVPBonus     int                `json:"mvpBonus,omitempty"`
	Participants []ParticipantShare `json:"participants"`
}

// DistributeMatchRewards asks the reward service to compute and distribute
// points, gold and XP for a completed match.
func (c *RewardServiceClient) DistributeMatchRewards(ctx context.Context, req DistributeRewardsRequest) error {
	if err := c.apiClient.Post(ctx, "/rewards/matches", req, nil); err != nil {
		return fmt.Errorf("failed to trigger reward distribution for match %s: %w", req.MatchID, err)
	}
	return nil
}
