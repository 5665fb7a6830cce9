// match/engine/escalation.go
package engine

import (
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// CallArbitrator records a referent's request for human intervention. It is
// idempotent per team per match: a repeat call while one is outstanding is a
// success no-op, so clients cannot tell "already called" from "just called".
func CallArbitrator(m *models.Match, team int, actorID string, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}
	if m.Status.IsTerminal() {
		return nil, ErrInvalidPhase
	}

	for _, c := range m.ArbitratorCalls {
		if c.ByTeam == team {
			return nil, nil // already outstanding
		}
	}

	m.ArbitratorCalls = append(m.ArbitratorCalls, models.ArbitratorCall{
		ByTeam: team,
		UserID: actorID,
		At:     now,
	})
	m.AppendSystemMessage("arbitrator_called", map[string]interface{}{"team": team}, now)
	return []models.EventType{models.EventArbitratorCalled}, nil
}

// ReportAfk records an AFK escalation from a referent once the roster grace
// period has elapsed. It never changes the match status: resolution is an
// arbitrator/admin decision. The per-team cooldown between reports is
// enforced by the caller against its cooldown store.
func ReportAfk(m *models.Match, team int, actorID string, grace time.Duration, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}
	if m.Status.IsTerminal() {
		return nil, ErrInvalidPhase
	}
	if now.Sub(m.CreatedAt) < grace {
		return nil, ErrRateLimited
	}

	m.AFKReports = append(m.AFKReports, models.AFKReport{
		ByTeam: team,
		UserID: actorID,
		At:     now,
	})
	m.ArbitratorCalls = append(m.ArbitratorCalls, models.ArbitratorCall{ByTeam: team, At: now})
	m.AppendSystemMessage("afk_reported", map[string]interface{}{"team": team}, now)
	return []models.EventType{models.EventAfkReported}, nil
}
