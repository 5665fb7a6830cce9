// match/engine/roster.go
package engine

import (
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// rosterPrecheck validates the invariants shared by every roster command:
// the match is in the roster phase and the actor is the acting team's referent.
func rosterPrecheck(m *models.Match, team int, actorID string) error {
	if m.Roster(team) == nil {
		return ErrInvalidTeam
	}
	if m.Status != models.StatusRosterSelection || !m.RosterSelection.IsActive {
		return ErrInvalidPhase
	}
	if !m.IsReferentOf(team, actorID) {
		return ErrUnauthorized
	}
	return nil
}

// SelectMember adds a squad member to the acting team's roster. The caller
// has already validated squad membership against the squad service.
func SelectMember(m *models.Match, team int, actorID, memberID, username string, now time.Time) ([]models.EventType, error) {
	if err := rosterPrecheck(m, team, actorID); err != nil {
		return nil, err
	}
	roster := m.Roster(team)

	if roster.Contains(memberID) {
		return nil, nil // replay
	}
	if m.TeamOf(memberID) != 0 {
		return nil, ErrUserUnavailable
	}
	if roster.Size() >= m.Format {
		return nil, ErrRosterFull
	}

	roster.Players = append(roster.Players, models.PlayerSlot{
		UserID:   memberID,
		Username: username,
		Team:     team,
	})
	recordPick(m, team, memberID, username, now)

	events := []models.EventType{models.EventRosterUpdated}
	events = append(events, maybeFinalizeRoster(m, now)...)
	return events, nil
}

// DeselectMember removes a previously selected member or helper from the
// acting team's roster. Referents cannot be removed.
func DeselectMember(m *models.Match, team int, actorID, memberID string, now time.Time) ([]models.EventType, error) {
	if err := rosterPrecheck(m, team, actorID); err != nil {
		return nil, err
	}
	roster := m.Roster(team)

	if memberID == m.Team1.ReferentID || memberID == m.Team2.ReferentID {
		return nil, ErrUnauthorized
	}

	for i, p := range roster.Players {
		if p.UserID == memberID {
			roster.Players = append(roster.Players[:i], roster.Players[i+1:]...)
			return []models.EventType{models.EventRosterUpdated}, nil
		}
	}
	if roster.Helper != nil && roster.Helper.UserID == memberID {
		roster.Helper = nil
		return []models.EventType{models.EventRosterUpdated}, nil
	}
	return nil, ErrMemberNotFound
}

// SelectHelper adds the team's single external helper. The caller has already
// validated that the helper is squadless and not in another active match.
func SelectHelper(m *models.Match, team int, actorID, helperID, username string, now time.Time) ([]models.EventType, error) {
	if err := rosterPrecheck(m, team, actorID); err != nil {
		return nil, err
	}
	roster := m.Roster(team)

	if roster.Helper != nil {
		if roster.Helper.UserID == helperID {
			return nil, nil // replay
		}
		return nil, ErrHelperLimitExceeded
	}
	if m.TeamOf(helperID) != 0 {
		return nil, ErrUserUnavailable
	}
	if roster.Size() >= m.Format {
		return nil, ErrRosterFull
	}

	roster.Helper = &models.PlayerSlot{
		UserID:   helperID,
		Username: username,
		Team:     team,
		IsHelper: true,
	}
	recordPick(m, team, helperID, username, now)

	events := []models.EventType{models.EventRosterUpdated}
	events = append(events, maybeFinalizeRoster(m, now)...)
	return events, nil
}

func recordPick(m *models.Match, team int, playerID, username string, now time.Time) {
	rs := &m.RosterSelection
	rs.PickOrder = append(rs.PickOrder, models.RosterPick{
		Team:     team,
		PlayerID: playerID,
		Username: username,
		PickedAt: now,
	})
	rs.TotalPicks++
	// CurrentTurn is informational only: both referents pick their own squads
	// independently, but clients render whose pick is "expected" next.
	if rs.CurrentTurn == 1 {
		rs.CurrentTurn = 2
	} else {
		rs.CurrentTurn = 1
	}
}

// maybeFinalizeRoster closes the roster phase once both teams reach format
// size, moving the match to map_vote or, when map selection is pre-resolved
// (free-choice mode), straight to ready.
func maybeFinalizeRoster(m *models.Match, now time.Time) []models.EventType {
	if m.Team1.Size() < m.Format || m.Team2.Size() < m.Format {
		return nil
	}

	rs := &m.RosterSelection
	rs.IsActive = false
	t := now
	rs.CompletedAt = &t
	m.AppendSystemMessage("roster_complete", nil, now)

	if m.MapSelection.FreeMapChoice {
		transition(m, models.StatusReady, now)
	} else {
		m.MapSelection.Bans.CurrentTurn = 1
		transition(m, models.StatusMapVote, now)
	}
	return []models.EventType{models.EventRosterComplete}
}
