// match/store/match_store.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/stricker-gg/go-services/shared/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// activeStatuses are the statuses that make a player "busy": a user occupying
// a roster seat in a match with one of these statuses cannot be picked as a
// helper elsewhere.
var activeStatuses = []models.MatchStatus{
	models.StatusPending,
	models.StatusRosterSelection,
	models.StatusMapVote,
	models.StatusReady,
	models.StatusInProgress,
	models.StatusDisputed,
}

// MatchFilter narrows ListMatches. Zero values are ignored.
type MatchFilter struct {
	Status  models.MatchStatus
	SquadID string
	UserID  string
	Limit   int64
}

// MatchStore represents the MongoDB data store for match aggregates.
type MatchStore struct {
	collection *mongo.Collection
}

// NewMatchStore creates a new MatchStore instance.
func NewMatchStore(collection *mongo.Collection) *MatchStore {
	return &MatchStore{
		collection: collection,
	}
}

// CreateMatch inserts a new match document.
func (ms *MatchStore) CreateMatch(ctx context.Context, m *models.Match) error {
	_, err := ms.collection.InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("match %s already exists", m.ID)
		}
		return fmt.Errorf("failed to create match %s: %w", m.ID, err)
	}
	return nil
}

// GetMatch retrieves one match by ID.
func (ms *MatchStore) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var m models.Match
	filter := bson.M{"_id": id}
	err := ms.collection.FindOne(ctx, filter).Decode(&m)
	if err != nil {
		return nil, err // Return mongo.ErrNoDocuments if not found
	}
	return &m, nil
}

// ReplaceMatch persists the whole aggregate. The coordinator mutates the
// match under a per-match lock, so a full-document replace keeps every
// sub-state write atomic without per-field update plumbing.
func (ms *MatchStore) ReplaceMatch(ctx context.Context, m *models.Match) error {
	m.UpdatedAt = time.Now()
	filter := bson.M{"_id": m.ID}
	res, err := ms.collection.ReplaceOne(ctx, filter, m)
	if err != nil {
		return fmt.Errorf("failed to replace match %s: %w", m.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("match %s not found for replace", m.ID)
	}
	return nil
}

// buildListFilter assembles the Mongo filter for ListMatches. Each populated
// field contributes one clause; multiple clauses combine under $and so a
// SquadID condition is never lost to a UserID one.
func buildListFilter(f MatchFilter) bson.M {
	var clauses []bson.M
	if f.Status != "" {
		clauses = append(clauses, bson.M{"status": f.Status})
	}
	if f.SquadID != "" {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"team1.squadId": f.SquadID},
			{"team2.squadId": f.SquadID},
		}})
	}
	if f.UserID != "" {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"team1.players.userId": f.UserID},
			{"team2.players.userId": f.UserID},
			{"team1.helper.userId": f.UserID},
			{"team2.helper.userId": f.UserID},
		}})
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// ListMatches returns matches matching the filter, newest first.
func (ms *MatchStore) ListMatches(ctx context.Context, f MatchFilter) ([]*models.Match, error) {
	filter := buildListFilter(f)

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cursor, err := ms.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []*models.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode match list: %w", err)
	}
	return matches, nil
}

// ListActiveMatches returns every match in a non-terminal status. The
// advisory scheduler iterates these.
func (ms *MatchStore) ListActiveMatches(ctx context.Context) ([]*models.Match, error) {
	cursor, err := ms.collection.Find(ctx, bson.M{"status": bson.M{"$in": activeStatuses}})
	if err != nil {
		return nil, fmt.Errorf("failed to list active matches: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []*models.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode active match list: %w", err)
	}
	return matches, nil
}

// IsUserInActiveMatch reports whether the user occupies a roster seat in any
// non-terminal match. Used to validate helper eligibility.
func (ms *MatchStore) IsUserInActiveMatch(ctx context.Context, userID string) (bool, error) {
	filter := bson.M{
		"status": bson.M{"$in": activeStatuses},
		"$or": []bson.M{
			{"team1.players.userId": userID},
			{"team2.players.userId": userID},
			{"team1.helper.userId": userID},
			{"team2.helper.userId": userID},
		},
	}
	count, err := ms.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check active matches for user %s: %w", userID, err)
	}
	return count > 0, nil
}

// SetRewardsDistributed flips the double-distribution guard for a match.
func (ms *MatchStore) SetRewardsDistributed(ctx context.Context, id string) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"rewardsDistributed": true, "updatedAt": time.Now()}}
	res, err := ms.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark rewards distributed for match %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("match %s not found for rewards update", id)
	}
	return nil
}
