// match/engine/mvp_test.go
package engine

import (
	"errors"
	"testing"

	"github.com/stricker-gg/go-services/shared/models"
)

func TestVoteMVPConfirmsWhenAllVoted(t *testing.T) {
	m := completedMatch(t, 1) // team 2 lost: eligible voters ref2 and u4

	events, err := VoteMVP(m, "ref2", "ref1", testNow)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if !hasEvent(events, models.EventMVPUpdated) {
		t.Errorf("events = %v, want mvp_updated", events)
	}
	if m.MVP.Confirmed {
		t.Fatal("election confirmed before every eligible voter voted")
	}

	if _, err := VoteMVP(m, "u4", "ref1", testNow); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if !m.MVP.Confirmed {
		t.Fatal("election not confirmed after the last eligible vote")
	}
	if m.MVP.Player != "ref1" {
		t.Errorf("MVP = %q, want ref1", m.MVP.Player)
	}
	if m.MVP.VotingActive {
		t.Error("voting still open after confirmation")
	}
}

func TestVoteMVPTieBreaksOnSmallestUserID(t *testing.T) {
	m := completedMatch(t, 1)

	if _, err := VoteMVP(m, "ref2", "u2", testNow); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := VoteMVP(m, "u4", "ref1", testNow); err != nil {
		t.Fatalf("vote: %v", err)
	}

	// One vote each for ref1 and u2: "ref1" < "u2".
	if m.MVP.Player != "ref1" {
		t.Errorf("MVP = %q, want the lexicographically smallest tied candidate ref1", m.MVP.Player)
	}
}

func TestVoteMVPRejections(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(*models.Match)
		voter    string
		votedFor string
		wantErr  error
	}{
		{
			name:     "winning-team voter",
			voter:    "ref1",
			votedFor: "ref1",
			wantErr:  ErrUnauthorized,
		},
		{
			name:     "outsider voter",
			voter:    "ghost",
			votedFor: "ref1",
			wantErr:  ErrUnauthorized,
		},
		{
			name:     "candidate on the losing team",
			voter:    "ref2",
			votedFor: "u4",
			wantErr:  ErrUserUnavailable,
		},
		{
			name: "changed vote",
			prepare: func(m *models.Match) {
				if _, err := VoteMVP(m, "ref2", "ref1", testNow); err != nil {
					t.Fatalf("prepare: %v", err)
				}
			},
			voter:    "ref2",
			votedFor: "u2",
			wantErr:  ErrAlreadyVoted,
		},
		{
			name: "voting closed",
			prepare: func(m *models.Match) {
				m.MVP.VotingActive = false
			},
			voter:    "ref2",
			votedFor: "ref1",
			wantErr:  ErrInvalidPhase,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := completedMatch(t, 1)
			if tt.prepare != nil {
				tt.prepare(m)
			}
			_, err := VoteMVP(m, tt.voter, tt.votedFor, testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VoteMVP error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestVoteMVPReplay(t *testing.T) {
	m := completedMatch(t, 1)
	if _, err := VoteMVP(m, "ref2", "ref1", testNow); err != nil {
		t.Fatalf("vote: %v", err)
	}

	events, err := VoteMVP(m, "ref2", "ref1", testNow)
	if err != nil {
		t.Fatalf("replayed vote: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("replay events = %v, want none", events)
	}
	if len(m.MVP.Votes) != 1 {
		t.Errorf("votes = %d, want 1", len(m.MVP.Votes))
	}
}

func TestVoteMVPSkipsFakeVoters(t *testing.T) {
	m := completedMatch(t, 1)
	// Mark u4 synthetic: ref2 alone closes the election.
	for i := range m.Team2.Players {
		if m.Team2.Players[i].UserID == "u4" {
			m.Team2.Players[i].IsFake = true
		}
	}

	if _, err := VoteMVP(m, "ref2", "ref1", testNow); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if !m.MVP.Confirmed {
		t.Error("election should confirm once every real losing-team member voted")
	}
}

func TestEligibleButUnvoted(t *testing.T) {
	m := completedMatch(t, 1)

	if !EligibleButUnvoted(m, "ref2") {
		t.Error("losing referent should owe a vote")
	}
	if EligibleButUnvoted(m, "ref1") {
		t.Error("winning-team member owes nothing")
	}

	if _, err := VoteMVP(m, "ref2", "ref1", testNow); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if EligibleButUnvoted(m, "ref2") {
		t.Error("voter still flagged after voting")
	}
}
