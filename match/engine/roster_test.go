// match/engine/roster_test.go
package engine

import (
	"errors"
	"testing"

	"github.com/stricker-gg/go-services/shared/models"
)

func TestNewMatchSeedsReferents(t *testing.T) {
	m := newBanModeMatch(t)

	if m.Status != models.StatusRosterSelection {
		t.Errorf("status = %s, want %s", m.Status, models.StatusRosterSelection)
	}
	if !m.RosterSelection.IsActive {
		t.Error("roster selection should open immediately")
	}
	if got := m.Team1.Size(); got != 1 {
		t.Errorf("team 1 size = %d, want 1", got)
	}
	if !m.Team1.Players[0].IsReferent || m.Team1.Players[0].UserID != "ref1" {
		t.Errorf("team 1 seed slot = %+v, want referent ref1", m.Team1.Players[0])
	}
	if m.TeamOf("ref2") != 2 {
		t.Errorf("TeamOf(ref2) = %d, want 2", m.TeamOf("ref2"))
	}
}

func TestNewMatchValidation(t *testing.T) {
	base := CreateParams{
		ID:              "m",
		Format:          2,
		Team1SquadID:    "a",
		Team1ReferentID: "r1",
		Team2SquadID:    "b",
		Team2ReferentID: "r2",
		MapPool:         testPool(),
	}

	tests := []struct {
		name   string
		mutate func(*CreateParams)
	}{
		{"missing id", func(p *CreateParams) { p.ID = "" }},
		{"zero format", func(p *CreateParams) { p.Format = 0 }},
		{"same squad twice", func(p *CreateParams) { p.Team2SquadID = p.Team1SquadID }},
		{"same referent twice", func(p *CreateParams) { p.Team2ReferentID = p.Team1ReferentID }},
		{"ban pool too small", func(p *CreateParams) { p.MapPool = p.MapPool[:2] }},
		{"host team out of range", func(p *CreateParams) { p.HostTeam = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			if _, err := NewMatch(p, testNow); err == nil {
				t.Error("NewMatch accepted invalid params")
			}
		})
	}
}

func TestNewMatchFormatOneSkipsRosterPhase(t *testing.T) {
	m, err := NewMatch(CreateParams{
		ID:              "m",
		Format:          1,
		Team1SquadID:    "a",
		Team1ReferentID: "r1",
		Team2SquadID:    "b",
		Team2ReferentID: "r2",
		FreeMapChoice:   true,
	}, testNow)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if m.Status != models.StatusReady {
		t.Errorf("status = %s, want %s (1v1 rosters are full on arrival)", m.Status, models.StatusReady)
	}
	if m.RosterSelection.IsActive {
		t.Error("roster phase should be closed")
	}
}

func TestSelectMember(t *testing.T) {
	m := newBanModeMatch(t)

	events, err := SelectMember(m, 1, "ref1", "u2", "Second", testNow)
	if err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	if !hasEvent(events, models.EventRosterUpdated) {
		t.Errorf("events = %v, want roster_updated", events)
	}
	if !m.Team1.Contains("u2") {
		t.Error("u2 not on team 1 roster")
	}
	if m.RosterSelection.TotalPicks != 1 {
		t.Errorf("TotalPicks = %d, want 1", m.RosterSelection.TotalPicks)
	}
	if m.RosterSelection.CurrentTurn != 2 {
		t.Errorf("CurrentTurn = %d, want 2", m.RosterSelection.CurrentTurn)
	}

	// Replay of the same pick succeeds without an event or a second slot.
	events, err = SelectMember(m, 1, "ref1", "u2", "Second", testNow)
	if err != nil {
		t.Fatalf("replayed SelectMember: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("replay events = %v, want none", events)
	}
	if got := m.Team1.Size(); got != 2 {
		t.Errorf("team 1 size after replay = %d, want 2", got)
	}
}

func TestSelectMemberRejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*models.Match)
		team    int
		actor   string
		member  string
		wantErr error
	}{
		{
			name:    "non-referent actor",
			team:    1,
			actor:   "u2",
			member:  "u3",
			wantErr: ErrUnauthorized,
		},
		{
			name:    "referent of the other team",
			team:    1,
			actor:   "ref2",
			member:  "u3",
			wantErr: ErrUnauthorized,
		},
		{
			name:    "invalid team",
			team:    3,
			actor:   "ref1",
			member:  "u3",
			wantErr: ErrInvalidTeam,
		},
		{
			name: "member already on the other team",
			prepare: func(m *models.Match) {
				if _, err := SelectMember(m, 2, "ref2", "u9", "Nine", testNow); err != nil {
					t.Fatalf("prepare: %v", err)
				}
			},
			team:    1,
			actor:   "ref1",
			member:  "u9",
			wantErr: ErrUserUnavailable,
		},
		{
			name: "roster full",
			prepare: func(m *models.Match) {
				if _, err := SelectMember(m, 1, "ref1", "u2", "Second", testNow); err != nil {
					t.Fatalf("prepare: %v", err)
				}
			},
			team:    1,
			actor:   "ref1",
			member:  "u3",
			wantErr: ErrRosterFull,
		},
		{
			name: "roster phase closed",
			prepare: func(m *models.Match) {
				fillRosters(t, m)
			},
			team:    1,
			actor:   "ref1",
			member:  "u3",
			wantErr: ErrInvalidPhase,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newBanModeMatch(t)
			if tt.prepare != nil {
				tt.prepare(m)
			}
			_, err := SelectMember(m, tt.team, tt.actor, tt.member, "Name", testNow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SelectMember error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRosterCompletionTransitionsToMapVote(t *testing.T) {
	m := newBanModeMatch(t)
	if _, err := SelectMember(m, 1, "ref1", "u2", "Second", testNow); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}

	events, err := SelectMember(m, 2, "ref2", "u4", "Fourth", testNow)
	if err != nil {
		t.Fatalf("SelectMember: %v", err)
	}
	if !hasEvent(events, models.EventRosterComplete) {
		t.Errorf("events = %v, want roster_complete", events)
	}
	if m.Status != models.StatusMapVote {
		t.Errorf("status = %s, want %s", m.Status, models.StatusMapVote)
	}
	if m.RosterSelection.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}
	if m.MapSelection.Bans.CurrentTurn != 1 {
		t.Errorf("ban CurrentTurn = %d, want 1", m.MapSelection.Bans.CurrentTurn)
	}
}

func TestRosterCompletionFreeChoiceSkipsMapVote(t *testing.T) {
	m, err := NewMatch(CreateParams{
		ID:              "m",
		Format:          2,
		Team1SquadID:    "a",
		Team1ReferentID: "ref1",
		Team2SquadID:    "b",
		Team2ReferentID: "ref2",
		FreeMapChoice:   true,
	}, testNow)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	fillRosters(t, m)
	if m.Status != models.StatusReady {
		t.Errorf("status = %s, want %s", m.Status, models.StatusReady)
	}
}

func TestDeselectMember(t *testing.T) {
	m := newBanModeMatch(t)
	if _, err := SelectMember(m, 1, "ref1", "u2", "Second", testNow); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}

	events, err := DeselectMember(m, 1, "ref1", "u2", testNow)
	if err != nil {
		t.Fatalf("DeselectMember: %v", err)
	}
	if !hasEvent(events, models.EventRosterUpdated) {
		t.Errorf("events = %v, want roster_updated", events)
	}
	if m.Team1.Contains("u2") {
		t.Error("u2 still on roster after deselect")
	}
}

func TestDeselectMemberRejections(t *testing.T) {
	m := newBanModeMatch(t)

	if _, err := DeselectMember(m, 1, "ref1", "ref1", testNow); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("deselecting a referent: err = %v, want %v", err, ErrUnauthorized)
	}
	if _, err := DeselectMember(m, 1, "ref1", "ghost", testNow); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("deselecting an absent member: err = %v, want %v", err, ErrMemberNotFound)
	}
}

func TestSelectHelper(t *testing.T) {
	m := newBanModeMatch(t)

	events, err := SelectHelper(m, 1, "ref1", "h1", "Helper", testNow)
	if err != nil {
		t.Fatalf("SelectHelper: %v", err)
	}
	if !hasEvent(events, models.EventRosterUpdated) {
		t.Errorf("events = %v, want roster_updated", events)
	}
	if m.Team1.Helper == nil || !m.Team1.Helper.IsHelper {
		t.Fatalf("helper slot = %+v, want an IsHelper slot", m.Team1.Helper)
	}
	if got := m.Team1.Size(); got != 2 {
		t.Errorf("team 1 size = %d, want 2 (helper counts toward format)", got)
	}

	// Replay is a success no-op; a different second helper is rejected.
	if _, err := SelectHelper(m, 1, "ref1", "h1", "Helper", testNow); err != nil {
		t.Errorf("replayed SelectHelper: %v", err)
	}
	if _, err := SelectHelper(m, 1, "ref1", "h2", "Other", testNow); !errors.Is(err, ErrHelperLimitExceeded) {
		t.Errorf("second helper: err = %v, want %v", err, ErrHelperLimitExceeded)
	}
}

func TestSelectHelperCompletesRoster(t *testing.T) {
	m := newBanModeMatch(t)
	if _, err := SelectMember(m, 2, "ref2", "u4", "Fourth", testNow); err != nil {
		t.Fatalf("SelectMember: %v", err)
	}

	events, err := SelectHelper(m, 1, "ref1", "h1", "Helper", testNow)
	if err != nil {
		t.Fatalf("SelectHelper: %v", err)
	}
	if !hasEvent(events, models.EventRosterComplete) {
		t.Errorf("events = %v, want roster_complete", events)
	}
	if m.Status != models.StatusMapVote {
		t.Errorf("status = %s, want %s", m.Status, models.StatusMapVote)
	}
}

func TestDeselectHelper(t *testing.T) {
	m := newBanModeMatch(t)
	if _, err := SelectHelper(m, 2, "ref2", "h1", "Helper", testNow); err != nil {
		t.Fatalf("SelectHelper: %v", err)
	}

	if _, err := DeselectMember(m, 2, "ref2", "h1", testNow); err != nil {
		t.Fatalf("DeselectMember: %v", err)
	}
	if m.Team2.Helper != nil {
		t.Error("helper slot not cleared")
	}
}
