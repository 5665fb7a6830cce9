// match/engine/cancel.go
package engine

import (
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// VoteCancel sets or withdraws a team's standing cancellation vote. The match
// is torn down only when both teams' votes are true at the same time; when
// both referents have voted and they disagree, the request lapses and both
// votes reset.
func VoteCancel(m *models.Match, team int, actorID string, vote bool, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}
	if !CanTransition(m.Status, models.StatusCancelled) {
		return nil, ErrInvalidPhase
	}

	cv := &m.CancellationVotes
	if current := teamCancelVote(cv, team); current != nil && *current == vote {
		return nil, nil // replay
	}

	v := vote
	t := now
	if team == 1 {
		cv.Team1 = &v
		cv.Team1VotedAt = &t
	} else {
		cv.Team2 = &v
		cv.Team2VotedAt = &t
	}

	events := []models.EventType{models.EventCancelVoteUpdate}

	if cv.Team1 != nil && cv.Team2 != nil {
		switch {
		case *cv.Team1 && *cv.Team2:
			transition(m, models.StatusCancelled, now)
			m.AppendSystemMessage("match_cancelled", map[string]interface{}{"reason": "mutual_agreement"}, now)
			events = append(events, models.EventMatchCancelled)
		case *cv.Team1 != *cv.Team2:
			// Disagreement: the request lapses, both teams may vote again.
			cv.Team1, cv.Team2 = nil, nil
			cv.Team1VotedAt, cv.Team2VotedAt = nil, nil
		}
	}
	return events, nil
}

func teamCancelVote(cv *models.CancellationVotes, team int) *bool {
	if team == 1 {
		return cv.Team1
	}
	return cv.Team2
}
