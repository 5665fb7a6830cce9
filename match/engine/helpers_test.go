// match/engine/helpers_test.go
package engine

import (
	"testing"
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

var testNow = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func testPool() []models.MapInfo {
	return []models.MapInfo{
		{Name: "Fracture"},
		{Name: "Ascent"},
		{Name: "Haven"},
	}
}

// newBanModeMatch returns a fresh 2v2 match in roster_selection with a
// 3-map ban pool and team 1 hosting.
func newBanModeMatch(t *testing.T) *models.Match {
	t.Helper()
	m, err := NewMatch(CreateParams{
		ID:                "match-1",
		Mode:              "2v2",
		Format:            2,
		Team1SquadID:      "squad-a",
		Team1ReferentID:   "ref1",
		Team1ReferentName: "Alpha",
		Team2SquadID:      "squad-b",
		Team2ReferentID:   "ref2",
		Team2ReferentName: "Bravo",
		MapPool:           testPool(),
		HostTeam:          1,
	}, testNow)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m
}

// fillRosters picks one member per team, closing the roster phase.
func fillRosters(t *testing.T, m *models.Match) {
	t.Helper()
	if _, err := SelectMember(m, 1, "ref1", "u2", "Second", testNow); err != nil {
		t.Fatalf("SelectMember team 1: %v", err)
	}
	if _, err := SelectMember(m, 2, "ref2", "u4", "Fourth", testNow); err != nil {
		t.Fatalf("SelectMember team 2: %v", err)
	}
	if m.RosterSelection.IsActive {
		t.Fatal("roster phase still active after both teams reached format size")
	}
}

// readyMatch advances a fresh ban-mode match through rosters and bans to ready.
func readyMatch(t *testing.T) *models.Match {
	t.Helper()
	m := newBanModeMatch(t)
	fillRosters(t, m)
	if _, err := BanMap(m, 1, "ref1", "Fracture", testNow); err != nil {
		t.Fatalf("BanMap team 1: %v", err)
	}
	if _, err := BanMap(m, 2, "ref2", "Ascent", testNow); err != nil {
		t.Fatalf("BanMap team 2: %v", err)
	}
	if m.Status != models.StatusReady {
		t.Fatalf("status = %s, want %s", m.Status, models.StatusReady)
	}
	return m
}

// completedMatch returns a match completed with the given winner and MVP
// voting open.
func completedMatch(t *testing.T, winner int) *models.Match {
	t.Helper()
	m := readyMatch(t)
	if _, err := SubmitResult(m, 1, "ref1", winner, testNow); err != nil {
		t.Fatalf("SubmitResult team 1: %v", err)
	}
	if _, err := SubmitResult(m, 2, "ref2", winner, testNow); err != nil {
		t.Fatalf("SubmitResult team 2: %v", err)
	}
	if m.Status != models.StatusCompleted {
		t.Fatalf("status = %s, want %s", m.Status, models.StatusCompleted)
	}
	return m
}

func hasEvent(events []models.EventType, want models.EventType) bool {
	for _, e := range events {
		if e == want {
			return true
		}
	}
	return false
}
