// shared/service/squadclient.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/stricker-gg/go-services/shared/api"
)

// SquadServiceClient is a client for the Squad Membership Service. The match
// service uses it to list pickable squad members and to validate helper
// eligibility.
type SquadServiceClient struct {
	apiClient *api.Client
}

// NewSquadClient creates a new Squad Membership Service client.
func NewSquadClient(baseURL string) *SquadServiceClient {
	return &SquadServiceClient{
		apiClient: api.NewClient(baseURL, api.NewDefaultHTTPClient()),
	}
}

// --- Request/Response DTOs for Squad Service Communication ---

// SquadMember is one member of a squad as reported by the squad service.
type SquadMember struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Rank     string `json:"rank"`
	Points   int    `json:"points"`
}

// PlayerSummary is a lightweight player record returned by searches.
type PlayerSummary struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	SquadID  string `json:"squadId,omitempty"`
}

// --- Client Methods for Squad Service API Endpoints ---

// GetSquadMembers fetches the member list of a squad.
// Returns api.ErrNotFound when the squad does not exist.
func (c *SquadServiceClient) GetSquadMembers(ctx context.Context, squadID string) ([]SquadMember, error) {
	var members []SquadMember
	err := c.apiClient.Get(ctx, fmt.Sprintf("/squads/%s/members", url.PathEscape(squadID)), &members)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: squad %s", api.ErrNotFound, squadID)
		}
		return nil, fmt.Errorf("failed to get members of squad %s from Squad Service: %w", squadID, err)
	}
	return members, nil
}

// GetPlayer fetches a single player record.
// Returns api.ErrNotFound when the player does not exist.
func (c *SquadServiceClient) GetPlayer(ctx context.Context, userID string) (*PlayerSummary, error) {
	player := &PlayerSummary{}
	err := c.apiClient.Get(ctx, fmt.Sprintf("/players/%s", url.PathEscape(userID)), player)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, fmt.Errorf("%w: player %s", api.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get player %s from Squad Service: %w", userID, err)
	}
	return player, nil
}

// SearchPlayers searches helper candidates by username prefix.
func (c *SquadServiceClient) SearchPlayers(ctx context.Context, query string) ([]PlayerSummary, error) {
	var players []PlayerSummary
	err := c.apiClient.Get(ctx, fmt.Sprintf("/players/search?q=%s", url.QueryEscape(query)), &players)
	if err != nil {
		return nil, fmt.Errorf("failed to search players %q in Squad Service: %w", query, err)
	}
	return players, nil
}

// IsSquadMember reports whether the user currently belongs to any squad.
// Helpers must be squadless.
func (c *SquadServiceClient) IsSquadMember(ctx context.Context, userID string) (bool, error) {
	var resp struct {
		SquadID string `json:"squadId"`
	}
	err := c.apiClient.Get(ctx, fmt.Sprintf("/players/%s/squad", url.PathEscape(userID)), &resp)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return false, nil // No squad membership record
		}
		return false, fmt.Errorf("failed to check squad membership of %s in Squad Service: %w", userID, err)
	}
	return resp.SquadID != "", nil
}
