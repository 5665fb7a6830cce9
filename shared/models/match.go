// shared/models/match.go
package models

import "time"

// MatchStatus is the authoritative lifecycle state of a Stricker match.
type MatchStatus string

const (
	StatusPending         MatchStatus = "pending"
	StatusRosterSelection MatchStatus = "roster_selection"
	StatusMapVote         MatchStatus = "map_vote"
	StatusReady           MatchStatus = "ready"
	StatusInProgress      MatchStatus = "in_progress"
	StatusCompleted       MatchStatus = "completed"
	StatusDisputed        MatchStatus = "disputed"
	StatusCancelled       MatchStatus = "cancelled"
)

// IsTerminal reports whether a match in this status can no longer be mutated
// through referent commands. Disputed is terminal-pending, not terminal: it
// still accepts admin resolution and mutual cancellation.
func (s MatchStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid reports whether s is one of the known status values.
func (s MatchStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRosterSelection, StatusMapVote, StatusReady,
		StatusInProgress, StatusCompleted, StatusDisputed, StatusCancelled:
		return true
	}
	return false
}

// PlayerRewards is the per-player reward snapshot filled in by the reward
// service after distribution.
type PlayerRewards struct {
	PointsChange int `bson:"pointsChange" json:"pointsChange"`
	GoldEarned   int `bson:"goldEarned" json:"goldEarned"`
	XPEarned     int `bson:"xpEarned" json:"xpEarned"`
	OldPoints    int `bson:"oldPoints" json:"oldPoints"`
	NewPoints    int `bson:"newPoints" json:"newPoints"`
}

// PlayerSlot is one seat on a team's roster. A user occupies at most one slot
// across both teams for the lifetime of the match.
type PlayerSlot struct {
	UserID     string         `bson:"userId" json:"userId"`
	Username   string         `bson:"username" json:"username"` // snapshot at pick time
	Team       int            `bson:"team" json:"team"`
	IsReferent bool           `bson:"isReferent" json:"isReferent"`
	IsHelper   bool           `bson:"isHelper" json:"isHelper"`
	IsFake     bool           `bson:"isFake" json:"isFake"` // synthetic filler, never an MVP candidate
	Kills      int            `bson:"kills" json:"kills"`
	Deaths     int            `bson:"deaths" json:"deaths"`
	Score      int            `bson:"score" json:"score"`
	Rewards    *PlayerRewards `bson:"rewards,omitempty" json:"rewards,omitempty"`
}

// TeamRoster is one side of the match.
type TeamRoster struct {
	SquadID    string       `bson:"squadId" json:"squadId"`
	ReferentID string       `bson:"referentId" json:"referentId"`
	Players    []PlayerSlot `bson:"players" json:"players"`
	Helper     *PlayerSlot  `bson:"helper,omitempty" json:"helper,omitempty"`
}

// Size counts occupied roster seats, helper included.
func (tr *TeamRoster) Size() int {
	n := len(tr.Players)
	if tr.Helper != nil {
		n++
	}
	return n
}

// Contains reports whether userID occupies any seat on this roster.
func (tr *TeamRoster) Contains(userID string) bool {
	for _, p := range tr.Players {
		if p.UserID == userID {
			return true
		}
	}
	return tr.Helper != nil && tr.Helper.UserID == userID
}

// RosterPick is an audit entry for one roster selection.
type RosterPick struct {
	Team     int       `bson:"team" json:"team"`
	PlayerID string    `bson:"playerId" json:"playerId"`
	Username string    `bson:"username" json:"username"`
	PickedAt time.Time `bson:"pickedAt" json:"pickedAt"`
}

// RosterSelection is the transient state of the team assembly phase.
type RosterSelection struct {
	IsActive    bool         `bson:"isActive" json:"isActive"`
	CurrentTurn int          `bson:"currentTurn" json:"currentTurn"`
	TotalPicks  int          `bson:"totalPicks" json:"totalPicks"`
	PickOrder   []RosterPick `bson:"pickOrder" json:"pickOrder"`
	StartedAt   *time.Time   `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time   `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// MapInfo identifies one playable map.
type MapInfo struct {
	Name  string `bson:"name" json:"name"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// MapBans tracks the alternating-ban protocol. CurrentTurn is the team whose
// referent may ban next.
type MapBans struct {
	Team1BannedMap string     `bson:"team1BannedMap,omitempty" json:"team1BannedMap,omitempty"`
	Team1BannedAt  *time.Time `bson:"team1BannedAt,omitempty" json:"team1BannedAt,omitempty"`
	Team2BannedMap string     `bson:"team2BannedMap,omitempty" json:"team2BannedMap,omitempty"`
	Team2BannedAt  *time.Time `bson:"team2BannedAt,omitempty" json:"team2BannedAt,omitempty"`
	CurrentTurn    int        `bson:"currentTurn" json:"currentTurn"`
}

// PlayedMap is one game of the match with its outcome. Goals are recorded per
// game so a split series can be resolved on goal average.
type PlayedMap struct {
	Name       string `bson:"name" json:"name"`
	Order      int    `bson:"order" json:"order"`
	Winner     int    `bson:"winner,omitempty" json:"winner,omitempty"` // 0 until decided
	Team1Goals int    `bson:"team1Goals" json:"team1Goals"`
	Team2Goals int    `bson:"team2Goals" json:"team2Goals"`
}

// MapSelection holds both map-selection modes. Exactly one of the two is in
// effect per match: ban mode (Pool + Bans) or free-choice (FreeMapChoice +
// TiebreakerMaps).
type MapSelection struct {
	FreeMapChoice  bool        `bson:"freeMapChoice" json:"freeMapChoice"`
	Pool           []MapInfo   `bson:"pool,omitempty" json:"pool,omitempty"`
	Bans           MapBans     `bson:"bans" json:"bans"`
	Team1ChosenMap *MapInfo    `bson:"team1ChosenMap,omitempty" json:"team1ChosenMap,omitempty"`
	Team2ChosenMap *MapInfo    `bson:"team2ChosenMap,omitempty" json:"team2ChosenMap,omitempty"`
	TiebreakerMaps []MapInfo   `bson:"tiebreakerMaps,omitempty" json:"tiebreakerMaps,omitempty"`
	SelectedMap    *MapInfo    `bson:"selectedMap,omitempty" json:"selectedMap,omitempty"`
	Maps           []PlayedMap `bson:"maps,omitempty" json:"maps,omitempty"`
}

// TeamReport is one referent's winner report.
type TeamReport struct {
	Winner     int       `bson:"winner" json:"winner"`
	ReportedAt time.Time `bson:"reportedAt" json:"reportedAt"`
}

// Result is the adjudication sub-state. Confirmed only flips to true when the
// two reports agree or an admin forces a winner.
type Result struct {
	Team1Report *TeamReport `bson:"team1Report,omitempty" json:"team1Report,omitempty"`
	Team2Report *TeamReport `bson:"team2Report,omitempty" json:"team2Report,omitempty"`
	Winner      int         `bson:"winner,omitempty" json:"winner,omitempty"`
	Confirmed   bool        `bson:"confirmed" json:"confirmed"`
	ConfirmedAt *time.Time  `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	ForcedBy    string      `bson:"forcedBy,omitempty" json:"forcedBy,omitempty"` // admin user id, when forced
}

// CancellationVotes records each referent's standing cancellation vote. nil
// means the team has not voted.
type CancellationVotes struct {
	Team1        *bool      `bson:"team1" json:"team1"`
	Team2        *bool      `bson:"team2" json:"team2"`
	Team1VotedAt *time.Time `bson:"team1VotedAt,omitempty" json:"team1VotedAt,omitempty"`
	Team2VotedAt *time.Time `bson:"team2VotedAt,omitempty" json:"team2VotedAt,omitempty"`
}

// ArbitratorCall records one escalation to a human operator. UserID is empty
// for calls the system records itself (dispute detection, AFK reports).
type ArbitratorCall struct {
	ByTeam int       `bson:"byTeam" json:"byTeam"`
	UserID string    `bson:"userId,omitempty" json:"userId,omitempty"`
	At     time.Time `bson:"at" json:"at"`
}

// AFKReport records one AFK escalation from a referent.
type AFKReport struct {
	ByTeam int       `bson:"byTeam" json:"byTeam"`
	UserID string    `bson:"userId" json:"userId"`
	At     time.Time `bson:"at" json:"at"`
}

// MVPVote is one losing-team member's vote for a winning-team player.
type MVPVote struct {
	Voter    string    `bson:"voter" json:"voter"`
	VotedFor string    `bson:"votedFor" json:"votedFor"`
	VotedAt  time.Time `bson:"votedAt" json:"votedAt"`
}

// MVPElection is the post-completion election sub-state.
type MVPElection struct {
	VotingActive bool      `bson:"votingActive" json:"votingActive"`
	Confirmed    bool      `bson:"confirmed" json:"confirmed"`
	Player       string    `bson:"player,omitempty" json:"player,omitempty"`
	BonusPoints  int       `bson:"bonusPoints" json:"bonusPoints"`
	Votes        []MVPVote `bson:"votes" json:"votes"`
}

// ChatMessage is one entry of the embedded match chat. System entries carry a
// MessageType plus parameters so clients can localize them.
type ChatMessage struct {
	UserID        string                 `bson:"userId,omitempty" json:"userId,omitempty"`
	Username      string                 `bson:"username,omitempty" json:"username,omitempty"`
	Team          int                    `bson:"team,omitempty" json:"team,omitempty"`
	Message       string                 `bson:"message,omitempty" json:"message,omitempty"`
	IsSystem      bool                   `bson:"isSystem" json:"isSystem"`
	IsStaff       bool                   `bson:"isStaff" json:"isStaff"`
	MessageType   string                 `bson:"messageType,omitempty" json:"messageType,omitempty"`
	MessageParams map[string]interface{} `bson:"messageParams,omitempty" json:"messageParams,omitempty"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`
}

// Match is the root aggregate of one Stricker match. It is owned exclusively
// by the match coordinator; nothing else writes it.
type Match struct {
	ID     string      `bson:"_id" json:"id"`
	Mode   string      `bson:"mode" json:"mode"`     // e.g. "hardcore", "cdl"
	Format int         `bson:"format" json:"format"` // team size, e.g. 3 or 5
	Status MatchStatus `bson:"status" json:"status"`

	Team1    TeamRoster `bson:"team1" json:"team1"`
	Team2    TeamRoster `bson:"team2" json:"team2"`
	HostTeam int        `bson:"hostTeam" json:"hostTeam"`
	GameCode string     `bson:"gameCode,omitempty" json:"gameCode,omitempty"`

	IsTestMatch        bool `bson:"isTestMatch" json:"isTestMatch"`
	RewardsDistributed bool `bson:"rewardsDistributed" json:"rewardsDistributed"`

	RosterSelection   RosterSelection   `bson:"rosterSelection" json:"rosterSelection"`
	MapSelection      MapSelection      `bson:"mapSelection" json:"mapSelection"`
	CancellationVotes CancellationVotes `bson:"cancellationVotes" json:"cancellationVotes"`
	Result            Result            `bson:"result" json:"result"`
	ArbitratorCalls   []ArbitratorCall  `bson:"arbitratorCalls" json:"arbitratorCalls"`
	AFKReports        []AFKReport       `bson:"afkReports" json:"afkReports"`
	MVP               MVPElection       `bson:"mvp" json:"mvp"`
	Chat              []ChatMessage     `bson:"chat" json:"chat"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Roster returns the roster of team 1 or 2, nil otherwise.
func (m *Match) Roster(team int) *TeamRoster {
	switch team {
	case 1:
		return &m.Team1
	case 2:
		return &m.Team2
	}
	return nil
}

// TeamOf returns the team number (1 or 2) a user belongs to, 0 if not in the match.
func (m *Match) TeamOf(userID string) int {
	if m.Team1.Contains(userID) {
		return 1
	}
	if m.Team2.Contains(userID) {
		return 2
	}
	return 0
}

// IsReferentOf reports whether userID is the referent of the given team.
func (m *Match) IsReferentOf(team int, userID string) bool {
	r := m.Roster(team)
	return r != nil && r.ReferentID != "" && r.ReferentID == userID
}

// IsReferent reports whether userID is a referent of either team.
func (m *Match) IsReferent(userID string) bool {
	return m.IsReferentOf(1, userID) || m.IsReferentOf(2, userID)
}

// LosingTeam returns the team that lost, 0 while the result is unconfirmed.
func (m *Match) LosingTeam() int {
	if !m.Result.Confirmed {
		return 0
	}
	switch m.Result.Winner {
	case 1:
		return 2
	case 2:
		return 1
	}
	return 0
}

// AppendSystemMessage appends a typed system entry to the match chat.
func (m *Match) AppendSystemMessage(msgType string, params map[string]interface{}, at time.Time) {
	m.Chat = append(m.Chat, ChatMessage{
		IsSystem:      true,
		MessageType:   msgType,
		MessageParams: params,
		CreatedAt:     at,
	})
}

// HasSystemMessage reports whether a system entry of the given type was
// already appended. Used to keep advisory notices idempotent.
func (m *Match) HasSystemMessage(msgType string) bool {
	for _, c := range m.Chat {
		if c.IsSystem && c.MessageType == msgType {
			return true
		}
	}
	return false
}
