// match/service/match_service_test.go
package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stricker-gg/go-services/match/engine"
	"github.com/stricker-gg/go-services/match/store"
	"github.com/stricker-gg/go-services/shared/models"
	sharedservice "github.com/stricker-gg/go-services/shared/service"
	"go.mongodb.org/mongo-driver/mongo"
)

// --- In-memory fakes ---

type fakeMatchStore struct {
	mu          sync.Mutex
	matches     map[string]*models.Match
	busyUsers   map[string]bool
	distributed map[string]bool
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{
		matches:     make(map[string]*models.Match),
		busyUsers:   make(map[string]bool),
		distributed: make(map[string]bool),
	}
}

func (f *fakeMatchStore) CreateMatch(_ context.Context, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.matches[m.ID] = &cp
	return nil
}

func (f *fakeMatchStore) GetMatch(_ context.Context, id string) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatchStore) ReplaceMatch(_ context.Context, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.matches[m.ID]; !ok {
		return errors.New("no match replaced")
	}
	cp := *m
	f.matches[m.ID] = &cp
	return nil
}

func (f *fakeMatchStore) ListMatches(_ context.Context, _ store.MatchFilter) ([]*models.Match, error) {
	return f.ListActiveMatches(context.Background())
}

func (f *fakeMatchStore) ListActiveMatches(_ context.Context) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.matches {
		if !m.Status.IsTerminal() {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMatchStore) IsUserInActiveMatch(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busyUsers[userID], nil
}

func (f *fakeMatchStore) SetRewardsDistributed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.distributed[id] = true
	return nil
}

type fakeAfkCooldowns struct {
	mu    sync.Mutex
	armed map[string]bool
}

func newFakeAfkCooldowns() *fakeAfkCooldowns {
	return &fakeAfkCooldowns{armed: make(map[string]bool)}
}

func (f *fakeAfkCooldowns) key(matchID string, team int) string {
	return matchID + ":" + string(rune('0'+team))
}

func (f *fakeAfkCooldowns) TryArm(_ context.Context, matchID string, team int, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(matchID, team)
	if f.armed[k] {
		return false, nil
	}
	f.armed[k] = true
	return true, nil
}

func (f *fakeAfkCooldowns) Disarm(_ context.Context, matchID string, team int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, f.key(matchID, team))
	return nil
}

func (f *fakeAfkCooldowns) isArmed(matchID string, team int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed[f.key(matchID, team)]
}

type fakeCreationLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeCreationLocks() *fakeCreationLocks {
	return &fakeCreationLocks{held: make(map[string]bool)}
}

func (f *fakeCreationLocks) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	return true, nil
}

func (f *fakeCreationLocks) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, key)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.MatchEvent
}

func (f *fakePublisher) Publish(_ context.Context, event models.MatchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) count(matchID string, eventType models.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.MatchID == matchID && e.Type == eventType {
			n++
		}
	}
	return n
}

type fakeSquadDirectory struct {
	members map[string][]sharedservice.SquadMember
	players map[string]*sharedservice.PlayerSummary
	inSquad map[string]bool
}

func newFakeSquadDirectory() *fakeSquadDirectory {
	return &fakeSquadDirectory{
		members: map[string][]sharedservice.SquadMember{
			"squad-a": {
				{UserID: "ref1", Username: "Alpha"},
				{UserID: "u2", Username: "Second"},
				{UserID: "u3", Username: "Third"},
			},
			"squad-b": {
				{UserID: "ref2", Username: "Bravo"},
				{UserID: "u4", Username: "Fourth"},
			},
		},
		players: map[string]*sharedservice.PlayerSummary{
			"h1": {UserID: "h1", Username: "Hired"},
			"h2": {UserID: "h2", Username: "Taken", SquadID: "squad-x"},
		},
		inSquad: map[string]bool{"h2": true},
	}
}

func (f *fakeSquadDirectory) GetSquadMembers(_ context.Context, squadID string) ([]sharedservice.SquadMember, error) {
	return f.members[squadID], nil
}

func (f *fakeSquadDirectory) SearchPlayers(_ context.Context, _ string) ([]sharedservice.PlayerSummary, error) {
	var out []sharedservice.PlayerSummary
	for _, p := range f.players {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeSquadDirectory) GetPlayer(_ context.Context, userID string) (*sharedservice.PlayerSummary, error) {
	p, ok := f.players[userID]
	if !ok {
		return nil, errors.New("player not found")
	}
	return p, nil
}

func (f *fakeSquadDirectory) IsSquadMember(_ context.Context, userID string) (bool, error) {
	return f.inSquad[userID], nil
}

type fakeRewardDistributor struct {
	requests chan sharedservice.DistributeRewardsRequest
}

func newFakeRewardDistributor() *fakeRewardDistributor {
	return &fakeRewardDistributor{requests: make(chan sharedservice.DistributeRewardsRequest, 4)}
}

func (f *fakeRewardDistributor) DistributeMatchRewards(_ context.Context, req sharedservice.DistributeRewardsRequest) error {
	f.requests <- req
	return nil
}

// --- Test harness ---

type harness struct {
	svc       *MatchService
	store     *fakeMatchStore
	afk       *fakeAfkCooldowns
	publisher *fakePublisher
	squads    *fakeSquadDirectory
	rewards   *fakeRewardDistributor
}

func newHarness() *harness {
	h := &harness{
		store:     newFakeMatchStore(),
		afk:       newFakeAfkCooldowns(),
		publisher: &fakePublisher{},
		squads:    newFakeSquadDirectory(),
		rewards:   newFakeRewardDistributor(),
	}
	h.svc = NewMatchService(h.store, h.afk, newFakeCreationLocks(), h.publisher, h.squads, h.rewards, Timings{
		RosterGracePeriod:  5 * time.Minute,
		AfkReportCooldown:  5 * time.Minute,
		MatchStartDeadline: 10 * time.Minute,
	})
	return h
}

func testCreateParams() CreateParams {
	return CreateParams{
		Mode:              "2v2",
		Format:            2,
		Team1SquadID:      "squad-a",
		Team1ReferentID:   "ref1",
		Team1ReferentName: "Alpha",
		Team2SquadID:      "squad-b",
		Team2ReferentID:   "ref2",
		Team2ReferentName: "Bravo",
		MapPool: []models.MapInfo{
			{Name: "Fracture"},
			{Name: "Ascent"},
			{Name: "Haven"},
		},
	}
}

func (h *harness) createMatch(t *testing.T) *models.Match {
	t.Helper()
	m, err := h.svc.CreateMatch(context.Background(), testCreateParams())
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	return m
}

// hostReferent returns the referent allowed to set the game code.
func hostReferent(m *models.Match) string {
	if m.HostTeam == 1 {
		return "ref1"
	}
	return "ref2"
}

// --- Tests ---

func TestCreateMatchPublishesAndPersists(t *testing.T) {
	h := newHarness()
	m := h.createMatch(t)

	if m.Status != models.StatusRosterSelection {
		t.Errorf("status = %s, want %s", m.Status, models.StatusRosterSelection)
	}
	if m.ID == "" {
		t.Error("match ID not assigned")
	}
	if _, err := h.store.GetMatch(context.Background(), m.ID); err != nil {
		t.Errorf("created match not persisted: %v", err)
	}
	if got := h.publisher.count(m.ID, models.EventMatchCreated); got != 1 {
		t.Errorf("match_created events = %d, want 1", got)
	}
}

func TestCreateMatchPairingLock(t *testing.T) {
	h := newHarness()
	locks := newFakeCreationLocks()
	h.svc = NewMatchService(h.store, h.afk, locks, h.publisher, h.squads, h.rewards, Timings{})

	if _, err := locks.Acquire(context.Background(), "squad-a:squad-b", time.Second); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	_, err := h.svc.CreateMatch(context.Background(), testCreateParams())
	if !errors.Is(err, ErrCreationInProgress) {
		t.Errorf("CreateMatch under held lock: err = %v, want %v", err, ErrCreationInProgress)
	}
}

func TestFullMatchFlow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	m := h.createMatch(t)

	// Roster phase.
	if _, err := h.svc.SelectMember(ctx, m.ID, "ref1", "u2"); err != nil {
		t.Fatalf("SelectMember team 1: %v", err)
	}
	m2, err := h.svc.SelectMember(ctx, m.ID, "ref2", "u4")
	if err != nil {
		t.Fatalf("SelectMember team 2: %v", err)
	}
	if m2.Status != models.StatusMapVote {
		t.Fatalf("status = %s, want %s", m2.Status, models.StatusMapVote)
	}

	// Ban phase.
	if _, err := h.svc.BanMap(ctx, m.ID, "ref1", "Fracture"); err != nil {
		t.Fatalf("BanMap team 1: %v", err)
	}
	m3, err := h.svc.BanMap(ctx, m.ID, "ref2", "Ascent")
	if err != nil {
		t.Fatalf("BanMap team 2: %v", err)
	}
	if m3.Status != models.StatusReady {
		t.Fatalf("status = %s, want %s", m3.Status, models.StatusReady)
	}

	// Start and finish.
	if _, err := h.svc.SetGameCode(ctx, m.ID, hostReferent(m3), "ABC123"); err != nil {
		t.Fatalf("SetGameCode: %v", err)
	}
	if _, err := h.svc.SubmitResult(ctx, m.ID, "ref1", 1); err != nil {
		t.Fatalf("SubmitResult team 1: %v", err)
	}
	m4, err := h.svc.SubmitResult(ctx, m.ID, "ref2", 1)
	if err != nil {
		t.Fatalf("SubmitResult team 2: %v", err)
	}
	if m4.Status != models.StatusCompleted || m4.Result.Winner != 1 {
		t.Fatalf("match = %s winner %d, want completed winner 1", m4.Status, m4.Result.Winner)
	}

	if got := h.publisher.count(m.ID, models.EventMatchCompleted); got != 1 {
		t.Errorf("match_completed events = %d, want 1", got)
	}

	// Completion triggers one reward distribution for all four seats.
	select {
	case req := <-h.rewards.requests:
		if req.MatchID != m.ID || req.Winner != 1 {
			t.Errorf("reward request = %+v, want match %s winner 1", req, m.ID)
		}
		if len(req.Participants) != 4 {
			t.Errorf("participants = %d, want 4", len(req.Participants))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reward distribution never triggered")
	}
}

func TestFreeChoiceSeriesFlow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	p := testCreateParams()
	p.MapPool = nil
	p.FreeMapChoice = true
	p.TiebreakerMaps = []models.MapInfo{{Name: "Bind"}, {Name: "Split"}}
	m, err := h.svc.CreateMatch(ctx, p)
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	// Filling the rosters skips the ban phase entirely.
	if _, err := h.svc.SelectMember(ctx, m.ID, "ref1", "u2"); err != nil {
		t.Fatalf("SelectMember team 1: %v", err)
	}
	m2, err := h.svc.SelectMember(ctx, m.ID, "ref2", "u4")
	if err != nil {
		t.Fatalf("SelectMember team 2: %v", err)
	}
	if m2.Status != models.StatusReady {
		t.Fatalf("status = %s, want %s", m2.Status, models.StatusReady)
	}

	// Each team names its own map.
	if _, err := h.svc.ChooseMap(ctx, m.ID, "ref1", "Bind"); err != nil {
		t.Fatalf("ChooseMap team 1: %v", err)
	}
	m3, err := h.svc.ChooseMap(ctx, m.ID, "ref2", "Haven")
	if err != nil {
		t.Fatalf("ChooseMap team 2: %v", err)
	}
	if len(m3.MapSelection.Maps) != 2 {
		t.Fatalf("Maps = %+v, want two scheduled games", m3.MapSelection.Maps)
	}
	if got := h.publisher.count(m.ID, models.EventMapSelected); got != 1 {
		t.Errorf("map_selected events = %d, want 1", got)
	}

	// A 1-1 split on a level aggregate draws the third map. Bind was game 1,
	// so Split is the first unplayed tiebreaker.
	if _, err := h.svc.RecordGameResult(ctx, m.ID, "ref1", 1, 2, 1); err != nil {
		t.Fatalf("RecordGameResult game 1: %v", err)
	}
	if _, err := h.svc.RecordGameResult(ctx, m.ID, "ref2", 2, 1, 2); err != nil {
		t.Fatalf("RecordGameResult game 2: %v", err)
	}
	m4, err := h.svc.ResolveTiebreaker(ctx, m.ID, "ref1")
	if err != nil {
		t.Fatalf("ResolveTiebreaker: %v", err)
	}
	maps := m4.MapSelection.Maps
	if len(maps) != 3 || maps[2].Name != "Split" {
		t.Fatalf("Maps = %+v, want Split appended as game 3", maps)
	}
	if got := h.publisher.count(m.ID, models.EventTiebreakerResolved); got != 1 {
		t.Errorf("tiebreaker_resolved events = %d, want 1", got)
	}

	// The series result still closes through the dual confirmation.
	if _, err := h.svc.SubmitResult(ctx, m.ID, "ref1", 2); err != nil {
		t.Fatalf("SubmitResult team 1: %v", err)
	}
	m5, err := h.svc.SubmitResult(ctx, m.ID, "ref2", 2)
	if err != nil {
		t.Fatalf("SubmitResult team 2: %v", err)
	}
	if m5.Status != models.StatusCompleted || m5.Result.Winner != 2 {
		t.Fatalf("match = %s winner %d, want completed winner 2", m5.Status, m5.Result.Winner)
	}
}

func TestSelectMemberOutsideSquad(t *testing.T) {
	h := newHarness()
	m := h.createMatch(t)

	_, err := h.svc.SelectMember(context.Background(), m.ID, "ref1", "stranger")
	if !errors.Is(err, engine.ErrUserUnavailable) {
		t.Errorf("picking a non-member: err = %v, want %v", err, engine.ErrUserUnavailable)
	}
}

func TestSelectMemberReplayPublishesNothing(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	m := h.createMatch(t)

	if _, err := h.svc.SelectMember(ctx, m.ID, "ref1", "u2"); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	before := h.publisher.count(m.ID, models.EventRosterUpdated)

	if _, err := h.svc.SelectMember(ctx, m.ID, "ref1", "u2"); err != nil {
		t.Fatalf("replayed SelectMember: %v", err)
	}
	if after := h.publisher.count(m.ID, models.EventRosterUpdated); after != before {
		t.Errorf("replay published roster_updated: %d -> %d", before, after)
	}
}

func TestSelectHelperEligibility(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	m := h.createMatch(t)

	// h2 still belongs to a squad.
	if _, err := h.svc.SelectHelper(ctx, m.ID, "ref1", "h2"); !errors.Is(err, engine.ErrUserUnavailable) {
		t.Errorf("squadded helper: err = %v, want %v", err, engine.ErrUserUnavailable)
	}

	// h1 is seated in another active match.
	h.store.mu.Lock()
	h.store.busyUsers["h1"] = true
	h.store.mu.Unlock()
	if _, err := h.svc.SelectHelper(ctx, m.ID, "ref1", "h1"); !errors.Is(err, engine.ErrUserUnavailable) {
		t.Errorf("busy helper: err = %v, want %v", err, engine.ErrUserUnavailable)
	}

	// Freed up, the pick goes through.
	h.store.mu.Lock()
	h.store.busyUsers["h1"] = false
	h.store.mu.Unlock()
	m2, err := h.svc.SelectHelper(ctx, m.ID, "ref1", "h1")
	if err != nil {
		t.Fatalf("SelectHelper: %v", err)
	}
	if m2.Team1.Helper == nil || m2.Team1.Helper.UserID != "h1" {
		t.Errorf("helper = %+v, want h1", m2.Team1.Helper)
	}
}

func TestSearchHelperCandidatesFilters(t *testing.T) {
	h := newHarness()
	m := h.createMatch(t)

	candidates, err := h.svc.SearchHelperCandidates(context.Background(), m.ID, "ref1", "h")
	if err != nil {
		t.Fatalf("SearchHelperCandidates: %v", err)
	}
	// h2 is squadded and filtered out.
	if len(candidates) != 1 || candidates[0].UserID != "h1" {
		t.Errorf("candidates = %+v, want only h1", candidates)
	}
}

func TestReportAfkCooldown(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	m := h.createMatch(t)

	// Inside the roster grace period the engine rejects the report, and the
	// claimed cooldown window is released so the rejection costs nothing.
	if _, err := h.svc.ReportAfk(ctx, m.ID, "ref1"); !errors.Is(err, engine.ErrRateLimited) {
		t.Errorf("report inside grace: err = %v, want %v", err, engine.ErrRateLimited)
	}
	if h.afk.isArmed(m.ID, 1) {
		t.Error("cooldown left armed after a rejected report")
	}

	// Age the match past the grace period.
	h.store.mu.Lock()
	h.store.matches[m.ID].CreatedAt = time.Now().Add(-10 * time.Minute)
	h.store.mu.Unlock()

	if _, err := h.svc.ReportAfk(ctx, m.ID, "ref1"); err != nil {
		t.Fatalf("ReportAfk: %v", err)
	}
	if !h.afk.isArmed(m.ID, 1) {
		t.Error("cooldown not armed after a successful report")
	}

	// The armed cooldown blocks the next report from the same team.
	if _, err := h.svc.ReportAfk(ctx, m.ID, "ref1"); !errors.Is(err, engine.ErrRateLimited) {
		t.Errorf("report on cooldown: err = %v, want %v", err, engine.ErrRateLimited)
	}
	// The other team is unaffected.
	if _, err := h.svc.ReportAfk(ctx, m.ID, "ref2"); err != nil {
		t.Errorf("team 2 report: %v", err)
	}
}

func TestGetMatchView(t *testing.T) {
	h := newHarness()
	m := h.createMatch(t)

	_, view, err := h.svc.GetMatch(context.Background(), m.ID, "ref1")
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if view.MyTeam != 1 || !view.IsReferent {
		t.Errorf("view = %+v, want team 1 referent", view)
	}
	if view.AfkReportAllowed {
		t.Error("AFK reporting allowed inside the grace period")
	}

	_, _, err = h.svc.GetMatch(context.Background(), "missing", "ref1")
	if !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("missing match: err = %v, want %v", err, ErrMatchNotFound)
	}
}

func TestSendChat(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	m := h.createMatch(t)

	m2, err := h.svc.SendChat(ctx, m.ID, "ref1", "glhf")
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	found := false
	for _, msg := range m2.Chat {
		if !msg.IsSystem && msg.UserID == "ref1" && msg.Message == "glhf" {
			found = true
		}
	}
	if !found {
		t.Errorf("chat = %+v, want a ref1 message", m2.Chat)
	}

	if _, err := h.svc.SendChat(ctx, m.ID, "stranger", "hi"); !errors.Is(err, engine.ErrUnauthorized) {
		t.Errorf("outsider chat: err = %v, want %v", err, engine.ErrUnauthorized)
	}
}

func TestFlagStartDeadlineIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	m := h.createMatch(t)

	// Advance to ready.
	if _, err := h.svc.SelectMember(ctx, m.ID, "ref1", "u2"); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	if _, err := h.svc.SelectMember(ctx, m.ID, "ref2", "u4"); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	if _, err := h.svc.BanMap(ctx, m.ID, "ref1", "Fracture"); err != nil {
		t.Fatalf("BanMap: %v", err)
	}
	if _, err := h.svc.BanMap(ctx, m.ID, "ref2", "Ascent"); err != nil {
		t.Fatalf("BanMap: %v", err)
	}

	if err := h.svc.FlagStartDeadline(ctx, m.ID); err != nil {
		t.Fatalf("FlagStartDeadline: %v", err)
	}
	if err := h.svc.FlagStartDeadline(ctx, m.ID); err != nil {
		t.Fatalf("repeated FlagStartDeadline: %v", err)
	}

	stored, err := h.store.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	flags := 0
	for _, msg := range stored.Chat {
		if msg.IsSystem && msg.MessageType == "start_deadline_passed" {
			flags++
		}
	}
	if flags != 1 {
		t.Errorf("start_deadline_passed notices = %d, want 1", flags)
	}
}

func TestTestMatchSkipsRewards(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	p := testCreateParams()
	p.IsTestMatch = true
	m, err := h.svc.CreateMatch(ctx, p)
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	if _, err := h.svc.SelectMember(ctx, m.ID, "ref1", "u2"); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	if _, err := h.svc.SelectMember(ctx, m.ID, "ref2", "u4"); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	if _, err := h.svc.BanMap(ctx, m.ID, "ref1", "Fracture"); err != nil {
		t.Fatalf("BanMap: %v", err)
	}
	if _, err := h.svc.BanMap(ctx, m.ID, "ref2", "Ascent"); err != nil {
		t.Fatalf("BanMap: %v", err)
	}
	if _, err := h.svc.SubmitResult(ctx, m.ID, "ref1", 1); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}
	if _, err := h.svc.SubmitResult(ctx, m.ID, "ref2", 1); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	select {
	case req := <-h.rewards.requests:
		t.Errorf("test match triggered reward distribution: %+v", req)
	case <-time.After(200 * time.Millisecond):
	}
}
