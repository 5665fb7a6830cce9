// match/engine/mvp.go
package engine

import (
	"sort"
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// VoteMVP records one losing-team member's vote for a winning-team player.
// The election confirms as soon as every eligible losing-team member has
// voted: most votes wins, ties break on the lexicographically smallest user
// ID.
func VoteMVP(m *models.Match, voterID, votedForID string, now time.Time) ([]models.EventType, error) {
	if m.Status != models.StatusCompleted || !m.MVP.VotingActive {
		return nil, ErrInvalidPhase
	}

	losing := m.LosingTeam()
	if losing == 0 || m.TeamOf(voterID) != losing {
		return nil, ErrUnauthorized
	}

	for _, v := range m.MVP.Votes {
		if v.Voter == voterID {
			if v.VotedFor == votedForID {
				return nil, nil // replay
			}
			return nil, ErrAlreadyVoted
		}
	}

	candidate := findSlot(m, m.Result.Winner, votedForID)
	if candidate == nil || candidate.IsFake {
		return nil, ErrUserUnavailable
	}

	m.MVP.Votes = append(m.MVP.Votes, models.MVPVote{
		Voter:    voterID,
		VotedFor: votedForID,
		VotedAt:  now,
	})

	if allEligibleVoted(m) {
		confirmMVP(m, now)
	}
	return []models.EventType{models.EventMVPUpdated}, nil
}

// EligibleButUnvoted reports whether the user still owes an MVP vote. Clients
// use this to gate dismissal of the result summary; it is never a hard
// state-machine block.
func EligibleButUnvoted(m *models.Match, userID string) bool {
	if m.IsTestMatch || !m.MVP.VotingActive || m.MVP.Confirmed {
		return false
	}
	losing := m.LosingTeam()
	if losing == 0 || m.TeamOf(userID) != losing {
		return false
	}
	slot := findSlot(m, losing, userID)
	if slot == nil || slot.IsFake {
		return false
	}
	for _, v := range m.MVP.Votes {
		if v.Voter == userID {
			return false
		}
	}
	return true
}

// eligibleVoters lists the real (non-synthetic) members of the losing team.
func eligibleVoters(m *models.Match) []string {
	roster := m.Roster(m.LosingTeam())
	if roster == nil {
		return nil
	}
	var voters []string
	for _, p := range roster.Players {
		if !p.IsFake {
			voters = append(voters, p.UserID)
		}
	}
	if roster.Helper != nil && !roster.Helper.IsFake {
		voters = append(voters, roster.Helper.UserID)
	}
	return voters
}

func allEligibleVoted(m *models.Match) bool {
	voted := make(map[string]bool, len(m.MVP.Votes))
	for _, v := range m.MVP.Votes {
		voted[v.Voter] = true
	}
	for _, id := range eligibleVoters(m) {
		if !voted[id] {
			return false
		}
	}
	return true
}

// findSlot returns the roster slot of userID on the given team, nil when absent.
func findSlot(m *models.Match, team int, userID string) *models.PlayerSlot {
	roster := m.Roster(team)
	if roster == nil {
		return nil
	}
	for i := range roster.Players {
		if roster.Players[i].UserID == userID {
			return &roster.Players[i]
		}
	}
	if roster.Helper != nil && roster.Helper.UserID == userID {
		return roster.Helper
	}
	return nil
}

func confirmMVP(m *models.Match, now time.Time) {
	tally := make(map[string]int)
	for _, v := range m.MVP.Votes {
		tally[v.VotedFor]++
	}

	candidates := make([]string, 0, len(tally))
	for id := range tally {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)

	best := ""
	bestVotes := -1
	for _, id := range candidates {
		if tally[id] > bestVotes {
			best = id
			bestVotes = tally[id]
		}
	}

	m.MVP.Player = best
	m.MVP.Confirmed = true
	m.MVP.VotingActive = false
	m.AppendSystemMessage("mvp_elected", map[string]interface{}{"player": best}, now)
}
