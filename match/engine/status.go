// match/engine/status.go
package engine

import (
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// legalTransitions is the coordinator's precondition table. The main spine is
// pending -> roster_selection -> map_vote -> ready -> in_progress -> completed.
// Cancellation is reachable from every non-terminal state; disputed only from
// ready/in_progress. pending may skip phases when the pairing event arrives
// with rosters already full or map selection pre-resolved.
var legalTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.StatusPending:         {models.StatusRosterSelection, models.StatusMapVote, models.StatusReady, models.StatusCancelled},
	models.StatusRosterSelection: {models.StatusMapVote, models.StatusReady, models.StatusCancelled},
	models.StatusMapVote:         {models.StatusReady, models.StatusCancelled},
	models.StatusReady:           {models.StatusInProgress, models.StatusCompleted, models.StatusDisputed, models.StatusCancelled},
	models.StatusInProgress:      {models.StatusCompleted, models.StatusDisputed, models.StatusCancelled},
	models.StatusDisputed:        {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether from -> to is in the precondition table.
func CanTransition(from, to models.MatchStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// transition applies from -> to, stamping CompletedAt on terminal states.
// Callers have already validated the transition.
func transition(m *models.Match, to models.MatchStatus, now time.Time) {
	m.Status = to
	if to == models.StatusCompleted || to == models.StatusCancelled {
		t := now
		m.CompletedAt = &t
	}
}

// SetGameCode records the lobby join code and starts the match. Only the host
// team's referent may set it, only from ready.
func SetGameCode(m *models.Match, userID, gameCode string, now time.Time) ([]models.EventType, error) {
	if !m.IsReferentOf(m.HostTeam, userID) {
		return nil, ErrUnauthorized
	}
	if m.Status == models.StatusInProgress && m.GameCode == gameCode {
		return nil, nil // replay
	}
	if m.Status != models.StatusReady {
		return nil, ErrInvalidPhase
	}

	m.GameCode = gameCode
	t := now
	m.StartedAt = &t
	transition(m, models.StatusInProgress, now)
	m.AppendSystemMessage("match_started", map[string]interface{}{"hostTeam": m.HostTeam}, now)
	return []models.EventType{models.EventGameCodeSet, models.EventMatchStarted}, nil
}

// AdminSetStatus is the unilateral operator override of the lifecycle state.
// It accepts any known status value and deliberately bypasses the transition
// table; it never touches the result sub-state.
func AdminSetStatus(m *models.Match, adminID string, to models.MatchStatus, now time.Time) ([]models.EventType, error) {
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}
	if m.Status == to {
		return nil, nil // replay
	}

	transition(m, to, now)
	m.AppendSystemMessage("status_overridden", map[string]interface{}{
		"status":  string(to),
		"adminId": adminID,
	}, now)
	return []models.EventType{models.EventStatusOverridden}, nil
}
