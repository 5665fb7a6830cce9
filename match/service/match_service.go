// match/service/match_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stricker-gg/go-services/match/engine"
	"github.com/stricker-gg/go-services/match/store"
	"github.com/stricker-gg/go-services/shared/models"
	sharedservice "github.com/stricker-gg/go-services/shared/service"
	"go.mongodb.org/mongo-driver/mongo" // For checking specific MongoDB errors
)

// MatchStore is the persistence contract the coordinator mutates through.
type MatchStore interface {
	CreateMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ReplaceMatch(ctx context.Context, m *models.Match) error
	ListMatches(ctx context.Context, f store.MatchFilter) ([]*models.Match, error)
	ListActiveMatches(ctx context.Context) ([]*models.Match, error)
	IsUserInActiveMatch(ctx context.Context, userID string) (bool, error)
	SetRewardsDistributed(ctx context.Context, id string) error
}

// AfkCooldowns tracks the per-team AFK report cooldown. TryArm claims the
// window atomically: it returns false when the team is already on cooldown.
type AfkCooldowns interface {
	TryArm(ctx context.Context, matchID string, team int, ttl time.Duration) (bool, error)
	Disarm(ctx context.Context, matchID string, team int) error
}

// CreationLocks guards match creation per squad pairing.
type CreationLocks interface {
	Acquire(ctx context.Context, pairingKey string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, pairingKey string) error
}

// EventPublisher broadcasts applied transitions to connected clients.
type EventPublisher interface {
	Publish(ctx context.Context, event models.MatchEvent) error
}

// SquadDirectory is the squad membership collaborator.
type SquadDirectory interface {
	GetSquadMembers(ctx context.Context, squadID string) ([]sharedservice.SquadMember, error)
	SearchPlayers(ctx context.Context, query string) ([]sharedservice.PlayerSummary, error)
	GetPlayer(ctx context.Context, userID string) (*sharedservice.PlayerSummary, error)
	IsSquadMember(ctx context.Context, userID string) (bool, error)
}

// RewardDistributor is the reward/ranking collaborator.
type RewardDistributor interface {
	DistributeMatchRewards(ctx context.Context, req sharedservice.DistributeRewardsRequest) error
}

// Timings bundles the protocol's wall-clock knobs.
type Timings struct {
	RosterGracePeriod  time.Duration
	AfkReportCooldown  time.Duration
	MatchStartDeadline time.Duration
}

// MatchService is the match coordinator: the single writer of every match
// aggregate. Every mutating command holds the match's lock across
// load-mutate-save, which guarantees at-most-one in-flight mutation per
// match. Engines validate before they mutate, so a rejected command changes
// nothing and publishes nothing.
type MatchService struct {
	matchStore MatchStore
	afk        AfkCooldowns
	locks      CreationLocks
	publisher  EventPublisher
	squads     SquadDirectory
	rewards    RewardDistributor
	timings    Timings

	mu         sync.Mutex
	matchLocks map[string]*sync.Mutex
}

// NewMatchService creates a new MatchService instance.
func NewMatchService(
	matchStore MatchStore,
	afk AfkCooldowns,
	locks CreationLocks,
	publisher EventPublisher,
	squads SquadDirectory,
	rewards RewardDistributor,
	timings Timings,
) *MatchService {
	return &MatchService{
		matchStore: matchStore,
		afk:        afk,
		locks:      locks,
		publisher:  publisher,
		squads:     squads,
		rewards:    rewards,
		timings:    timings,
		matchLocks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations of one match.
func (s *MatchService) lockFor(matchID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.matchLocks[matchID]
	if !ok {
		l = &sync.Mutex{}
		s.matchLocks[matchID] = l
	}
	return l
}

// mutate is the coordinator's single mutation path: load the aggregate under
// its lock, run the engine transition, persist only when something was
// applied, then publish one event per transition. An empty event list is an
// idempotent replay: success, no write, no broadcast.
func (s *MatchService) mutate(ctx context.Context, matchID string, fn func(m *models.Match) ([]models.EventType, error)) (*models.Match, error) {
	lock := s.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	events, err := fn(m)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return m, nil // replay, nothing to persist
	}

	if err := s.matchStore.ReplaceMatch(ctx, m); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, m.ID, events)
	s.runCompletionSideEffects(m, events)
	return m, nil
}

func (s *MatchService) loadMatch(ctx context.Context, matchID string) (*models.Match, error) {
	m, err := s.matchStore.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *MatchService) publishEvents(ctx context.Context, matchID string, events []models.EventType) {
	now := time.Now()
	for _, e := range events {
		if err := s.publisher.Publish(ctx, models.MatchEvent{Type: e, MatchID: matchID, At: now}); err != nil {
			// Push is best-effort: clients reconcile through snapshot polling.
			log.Printf("WARN: Failed to publish %s for match %s: %v", e, matchID, err)
		}
	}
}

// runCompletionSideEffects fires the reward trigger when a transition
// completed the match. It runs in its own goroutine with its own timeout:
// completion is acknowledged to the caller regardless of the reward outcome.
func (s *MatchService) runCompletionSideEffects(m *models.Match, events []models.EventType) {
	completed := false
	for _, e := range events {
		if e == models.EventMatchCompleted {
			completed = true
			break
		}
	}
	if !completed || m.IsTestMatch || m.RewardsDistributed {
		return
	}

	snapshot := *m
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.distributeRewards(ctx, &snapshot)
	}()
}

func (s *MatchService) distributeRewards(ctx context.Context, m *models.Match) {
	req := sharedservice.DistributeRewardsRequest{
		MatchID: m.ID,
		Winner:  m.Result.Winner,
	}
	for _, roster := range []*models.TeamRoster{&m.Team1, &m.Team2} {
		for _, p := range roster.Players {
			req.Participants = append(req.Participants, sharedservice.ParticipantShare{
				UserID: p.UserID, Team: p.Team, IsHelper: p.IsHelper, IsFake: p.IsFake,
			})
		}
		if roster.Helper != nil {
			req.Participants = append(req.Participants, sharedservice.ParticipantShare{
				UserID: roster.Helper.UserID, Team: roster.Helper.Team, IsHelper: true, IsFake: roster.Helper.IsFake,
			})
		}
	}

	if err := s.rewards.DistributeMatchRewards(ctx, req); err != nil {
		// The reward service retries on its side; operators can re-trigger
		// because rewardsDistributed stays false.
		log.Printf("ERROR: Reward distribution failed for match %s: %v", m.ID, err)
		return
	}
	if err := s.matchStore.SetRewardsDistributed(ctx, m.ID); err != nil {
		log.Printf("ERROR: Failed to mark rewards distributed for match %s: %v", m.ID, err)
		return
	}
	log.Printf("INFO: Rewards distributed for match %s (winner: team %d).", m.ID, m.Result.Winner)
}

// referentTeamOf returns the team whose referent is userID, 0 when neither.
func referentTeamOf(m *models.Match, userID string) int {
	if m.IsReferentOf(1, userID) {
		return 1
	}
	if m.IsReferentOf(2, userID) {
		return 2
	}
	return 0
}

// --- Lifecycle ---

// CreateParams mirrors the pairing event, minus the match ID which the
// coordinator assigns.
type CreateParams struct {
	Mode              string
	Format            int
	Team1SquadID      string
	Team1ReferentID   string
	Team1ReferentName string
	Team2SquadID      string
	Team2ReferentID   string
	Team2ReferentName string
	MapPool           []models.MapInfo
	FreeMapChoice     bool
	TiebreakerMaps    []models.MapInfo
	IsTestMatch       bool
}

// CreateMatch opens a new match from a pairing event. A short Redis lock per
// squad pairing absorbs duplicate pairing deliveries.
func (s *MatchService) CreateMatch(ctx context.Context, p CreateParams) (*models.Match, error) {
	pairingKey := pairingKeyOf(p.Team1SquadID, p.Team2SquadID)
	acquired, err := s.locks.Acquire(ctx, pairingKey, 10*time.Second)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrCreationInProgress
	}
	defer func() {
		if err := s.locks.Release(context.Background(), pairingKey); err != nil {
			log.Printf("WARN: Failed to release creation lock %s: %v", pairingKey, err)
		}
	}()

	m, err := engine.NewMatch(engine.CreateParams{
		ID:                uuid.New().String(),
		Mode:              p.Mode,
		Format:            p.Format,
		Team1SquadID:      p.Team1SquadID,
		Team1ReferentID:   p.Team1ReferentID,
		Team1ReferentName: p.Team1ReferentName,
		Team2SquadID:      p.Team2SquadID,
		Team2ReferentID:   p.Team2ReferentID,
		Team2ReferentName: p.Team2ReferentName,
		MapPool:           p.MapPool,
		FreeMapChoice:     p.FreeMapChoice,
		TiebreakerMaps:    p.TiebreakerMaps,
		IsTestMatch:       p.IsTestMatch,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.matchStore.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, m.ID, []models.EventType{models.EventMatchCreated})
	log.Printf("INFO: Match %s created for squads %s vs %s (host: team %d).", m.ID, p.Team1SquadID, p.Team2SquadID, m.HostTeam)
	return m, nil
}

func pairingKeyOf(squad1, squad2 string) string {
	if squad1 > squad2 {
		squad1, squad2 = squad2, squad1
	}
	return strings.Join([]string{squad1, squad2}, ":")
}

// MatchView is the caller-relative context attached to a snapshot.
type MatchView struct {
	MyTeam             int  `json:"myTeam"`
	IsReferent         bool `json:"isReferent"`
	AfkReportAllowed   bool `json:"afkReportAllowed"`
	EligibleButUnvoted bool `json:"eligibleButUnvoted"`
}

// GetMatch returns the full snapshot plus the caller's view of it. userID may
// be empty for anonymous reads.
func (s *MatchService) GetMatch(ctx context.Context, matchID, userID string) (*models.Match, *MatchView, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}

	view := &MatchView{
		AfkReportAllowed: !m.Status.IsTerminal() && time.Since(m.CreatedAt) >= s.timings.RosterGracePeriod,
	}
	if userID != "" {
		view.MyTeam = m.TeamOf(userID)
		view.IsReferent = m.IsReferent(userID)
		view.EligibleButUnvoted = engine.EligibleButUnvoted(m, userID)
	}
	return m, view, nil
}

// ListMatches returns matches for history and operator queries.
func (s *MatchService) ListMatches(ctx context.Context, f store.MatchFilter) ([]*models.Match, error) {
	return s.matchStore.ListMatches(ctx, f)
}

// --- Roster selection ---

// SelectMember picks a squad member onto the acting referent's roster.
func (s *MatchService) SelectMember(ctx context.Context, matchID, actorID, memberID string) (*models.Match, error) {
	m0, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	team := referentTeamOf(m0, actorID)
	if team == 0 {
		return nil, engine.ErrUnauthorized
	}

	members, err := s.squads.GetSquadMembers(ctx, m0.Roster(team).SquadID)
	if err != nil {
		return nil, err
	}
	username := ""
	for _, mem := range members {
		if mem.UserID == memberID {
			username = mem.Username
			break
		}
	}
	if username == "" {
		return nil, engine.ErrUserUnavailable // not a member of the acting squad
	}

	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.SelectMember(m, team, actorID, memberID, username, time.Now())
	})
}

// DeselectMember removes a member or helper from the acting referent's roster.
func (s *MatchService) DeselectMember(ctx context.Context, matchID, actorID, memberID string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.DeselectMember(m, team, actorID, memberID, time.Now())
	})
}

// SearchHelperCandidates lists squadless players matching the query who are
// not already seated in this match.
func (s *MatchService) SearchHelperCandidates(ctx context.Context, matchID, actorID, query string) ([]sharedservice.PlayerSummary, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if referentTeamOf(m, actorID) == 0 {
		return nil, engine.ErrUnauthorized
	}

	found, err := s.squads.SearchPlayers(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates := make([]sharedservice.PlayerSummary, 0, len(found))
	for _, p := range found {
		if p.SquadID != "" || m.TeamOf(p.UserID) != 0 {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates, nil
}

// SelectHelper adds the team's single external helper after validating that
// the candidate is squadless and not seated in another active match.
func (s *MatchService) SelectHelper(ctx context.Context, matchID, actorID, helperID string) (*models.Match, error) {
	m0, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	team := referentTeamOf(m0, actorID)
	if team == 0 {
		return nil, engine.ErrUnauthorized
	}

	player, err := s.squads.GetPlayer(ctx, helperID)
	if err != nil {
		return nil, err
	}
	inSquad, err := s.squads.IsSquadMember(ctx, helperID)
	if err != nil {
		return nil, err
	}
	if inSquad {
		return nil, engine.ErrUserUnavailable
	}
	busy, err := s.matchStore.IsUserInActiveMatch(ctx, helperID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, engine.ErrUserUnavailable
	}

	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.SelectHelper(m, team, actorID, helperID, player.Username, time.Now())
	})
}

// --- Map selection ---

// BanMap records the acting referent's map ban.
func (s *MatchService) BanMap(ctx context.Context, matchID, actorID, mapName string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.BanMap(m, team, actorID, mapName, time.Now())
	})
}

// ChooseMap records the acting team's own map pick in free-choice mode.
func (s *MatchService) ChooseMap(ctx context.Context, matchID, actorID, mapName string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.ChooseMap(m, team, actorID, mapName, time.Now())
	})
}

// RecordGameResult records the final score of one game of a free-choice series.
func (s *MatchService) RecordGameResult(ctx context.Context, matchID, actorID string, order, team1Goals, team2Goals int) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.RecordGameResult(m, team, actorID, order, team1Goals, team2Goals, time.Now())
	})
}

// ResolveTiebreaker settles a 1-1 free-choice series by goal average, or by
// drawing the third map when the aggregate is level.
func (s *MatchService) ResolveTiebreaker(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.ResolveTiebreaker(m, team, actorID, time.Now())
	})
}

// --- Play ---

// SetGameCode records the lobby code and starts the match.
func (s *MatchService) SetGameCode(ctx context.Context, matchID, actorID, gameCode string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.SetGameCode(m, actorID, gameCode, time.Now())
	})
}

// SubmitResult records one referent's winner report.
func (s *MatchService) SubmitResult(ctx context.Context, matchID, actorID string, winner int) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.SubmitResult(m, team, actorID, winner, time.Now())
	})
}

// VoteCancel sets or withdraws the acting team's cancellation vote.
func (s *MatchService) VoteCancel(ctx context.Context, matchID, actorID string, vote bool) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.VoteCancel(m, team, actorID, vote, time.Now())
	})
}

// ReportAfk records an AFK escalation, enforcing the per-team cooldown
// through the Redis-backed cooldown store.
func (s *MatchService) ReportAfk(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	m0, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	team := referentTeamOf(m0, actorID)
	if team == 0 {
		return nil, engine.ErrUnauthorized
	}

	armed, err := s.afk.TryArm(ctx, matchID, team, s.timings.AfkReportCooldown)
	if err != nil {
		return nil, err
	}
	if !armed {
		return nil, engine.ErrRateLimited
	}

	m, err := s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.ReportAfk(m, team, actorID, s.timings.RosterGracePeriod, time.Now())
	})
	if err != nil {
		// The claimed window is returned so a rejected report does not
		// consume the team's cooldown.
		if derr := s.afk.Disarm(context.Background(), matchID, team); derr != nil {
			log.Printf("WARN: Failed to disarm AFK cooldown for match %s team %d: %v", matchID, team, derr)
		}
		return nil, err
	}
	return m, nil
}

// CallArbitrator records a request for human intervention.
func (s *MatchService) CallArbitrator(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := referentTeamOf(m, actorID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		return engine.CallArbitrator(m, team, actorID, time.Now())
	})
}

// SendChat appends a participant message to the match chat.
func (s *MatchService) SendChat(ctx context.Context, matchID, userID, message string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		team := m.TeamOf(userID)
		if team == 0 {
			return nil, engine.ErrUnauthorized
		}
		slot := m.Roster(team)
		username := ""
		for _, p := range slot.Players {
			if p.UserID == userID {
				username = p.Username
			}
		}
		if slot.Helper != nil && slot.Helper.UserID == userID {
			username = slot.Helper.Username
		}
		m.Chat = append(m.Chat, models.ChatMessage{
			UserID:    userID,
			Username:  username,
			Team:      team,
			Message:   message,
			CreatedAt: time.Now(),
		})
		return []models.EventType{models.EventChatMessage}, nil
	})
}

// VoteMVP records a losing-team member's MVP vote.
func (s *MatchService) VoteMVP(ctx context.Context, matchID, voterID, votedForID string) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.VoteMVP(m, voterID, votedForID, time.Now())
	})
}

// --- Admin ---

// ForceWinner is the unilateral admin resolution path.
func (s *MatchService) ForceWinner(ctx context.Context, matchID, adminID string, winner int) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.ForceWinner(m, adminID, winner, time.Now())
	})
}

// SetStatus is the unilateral admin status override.
func (s *MatchService) SetStatus(ctx context.Context, matchID, adminID string, status models.MatchStatus) (*models.Match, error) {
	return s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		return engine.AdminSetStatus(m, adminID, status, time.Now())
	})
}

// --- Advisory checks ---

// FlagStartDeadline appends a one-time system notice when a ready match has
// not started within the deadline. Advisory only: no transition happens.
func (s *MatchService) FlagStartDeadline(ctx context.Context, matchID string) error {
	_, err := s.mutate(ctx, matchID, func(m *models.Match) ([]models.EventType, error) {
		if m.Status != models.StatusReady || m.HasSystemMessage("start_deadline_passed") {
			return nil, nil
		}
		m.AppendSystemMessage("start_deadline_passed", map[string]interface{}{
			"deadlineMinutes": int(s.timings.MatchStartDeadline.Minutes()),
		}, time.Now())
		return []models.EventType{models.EventChatMessage}, nil
	})
	return err
}

// ListActiveMatches exposes the non-terminal matches to the advisory scheduler.
func (s *MatchService) ListActiveMatches(ctx context.Context) ([]*models.Match, error) {
	return s.matchStore.ListActiveMatches(ctx)
}

// StartDeadline reports the configured advisory match-start deadline.
func (s *MatchService) StartDeadline() time.Duration {
	return s.timings.MatchStartDeadline
}
