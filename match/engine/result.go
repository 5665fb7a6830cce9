// match/engine/result.go
package engine

import (
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// SubmitResult records one referent's winner report. Agreement confirms the
// result and completes the match; disagreement moves it to disputed and
// records a single automatic arbitrator call. A replay of an identical
// report is a success no-op even after the dispute, a conflicting second
// report from the same team is rejected.
func SubmitResult(m *models.Match, team int, actorID string, winner int, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if winner != 1 && winner != 2 {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}

	if existing := teamReport(m, team); existing != nil {
		if existing.Winner == winner {
			return nil, nil // replay
		}
		return nil, ErrAlreadyReported
	}
	// Reports are accepted exactly from the states that can still dispute.
	if !CanTransition(m.Status, models.StatusDisputed) {
		return nil, ErrInvalidPhase
	}

	report := &models.TeamReport{Winner: winner, ReportedAt: now}
	if team == 1 {
		m.Result.Team1Report = report
	} else {
		m.Result.Team2Report = report
	}

	events := []models.EventType{models.EventResultUpdated}
	other := teamReport(m, opponent(team))
	if other == nil {
		return events, nil // waiting for the second report
	}

	if other.Winner == winner {
		confirmResult(m, winner, now)
		events = append(events, models.EventMatchCompleted)
	} else {
		transition(m, models.StatusDisputed, now)
		m.ArbitratorCalls = append(m.ArbitratorCalls, models.ArbitratorCall{ByTeam: team, At: now})
		m.AppendSystemMessage("result_disputed", map[string]interface{}{
			"team1Winner": m.Result.Team1Report.Winner,
			"team2Winner": m.Result.Team2Report.Winner,
		}, now)
		events = append(events, models.EventMatchDisputed)
	}
	return events, nil
}

// ForceWinner is the unilateral admin/arbitrator resolution path. Valid from
// any state except completed and cancelled; it bypasses report agreement.
func ForceWinner(m *models.Match, adminID string, winner int, now time.Time) ([]models.EventType, error) {
	if winner != 1 && winner != 2 {
		return nil, ErrInvalidTeam
	}
	if m.Status == models.StatusCompleted && m.Result.Winner == winner {
		return nil, nil // replay
	}
	if m.Status.IsTerminal() {
		return nil, ErrInvalidPhase
	}

	confirmResult(m, winner, now)
	m.Result.ForcedBy = adminID
	m.AppendSystemMessage("winner_forced", map[string]interface{}{
		"winner":  winner,
		"adminId": adminID,
	}, now)
	return []models.EventType{models.EventResultUpdated, models.EventMatchCompleted}, nil
}

// confirmResult seals the result, completes the match and opens MVP voting
// for real matches.
func confirmResult(m *models.Match, winner int, now time.Time) {
	m.Result.Winner = winner
	m.Result.Confirmed = true
	t := now
	m.Result.ConfirmedAt = &t
	transition(m, models.StatusCompleted, now)
	if !m.IsTestMatch {
		m.MVP.VotingActive = true
	}
}

func teamReport(m *models.Match, team int) *models.TeamReport {
	if team == 1 {
		return m.Result.Team1Report
	}
	return m.Result.Team2Report
}
