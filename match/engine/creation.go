// match/engine/creation.go
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// CreateParams carries everything the external pairing event supplies for a
// new match.
type CreateParams struct {
	ID                string
	Mode              string
	Format            int
	Team1SquadID      string
	Team1ReferentID   string
	Team1ReferentName string
	Team2SquadID      string
	Team2ReferentID   string
	Team2ReferentName string
	MapPool           []models.MapInfo
	FreeMapChoice     bool
	TiebreakerMaps    []models.MapInfo
	IsTestMatch       bool
	HostTeam          int // 0 draws the host team at random
}

// NewMatch builds the initial aggregate for a freshly paired match. Both
// referents are seeded into their rosters and the roster phase opens
// immediately.
func NewMatch(p CreateParams, now time.Time) (*models.Match, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("match id is required")
	}
	if p.Format < 1 {
		return nil, fmt.Errorf("format must be a positive team size, got %d", p.Format)
	}
	if p.Team1SquadID == "" || p.Team2SquadID == "" || p.Team1SquadID == p.Team2SquadID {
		return nil, fmt.Errorf("two distinct squads are required")
	}
	if p.Team1ReferentID == "" || p.Team2ReferentID == "" || p.Team1ReferentID == p.Team2ReferentID {
		return nil, fmt.Errorf("two distinct referents are required")
	}
	if !p.FreeMapChoice && len(p.MapPool) < 3 {
		return nil, fmt.Errorf("ban mode requires a pool of at least 3 maps, got %d", len(p.MapPool))
	}
	if p.HostTeam != 0 && p.HostTeam != 1 && p.HostTeam != 2 {
		return nil, ErrInvalidTeam
	}

	hostTeam := p.HostTeam
	if hostTeam == 0 {
		hostTeam = rand.Intn(2) + 1
	}

	m := &models.Match{
		ID:       p.ID,
		Mode:     p.Mode,
		Format:   p.Format,
		Status:   models.StatusRosterSelection,
		HostTeam: hostTeam,
		Team1: models.TeamRoster{
			SquadID:    p.Team1SquadID,
			ReferentID: p.Team1ReferentID,
			Players: []models.PlayerSlot{{
				UserID:     p.Team1ReferentID,
				Username:   p.Team1ReferentName,
				Team:       1,
				IsReferent: true,
			}},
		},
		Team2: models.TeamRoster{
			SquadID:    p.Team2SquadID,
			ReferentID: p.Team2ReferentID,
			Players: []models.PlayerSlot{{
				UserID:     p.Team2ReferentID,
				Username:   p.Team2ReferentName,
				Team:       2,
				IsReferent: true,
			}},
		},
		IsTestMatch: p.IsTestMatch,
		RosterSelection: models.RosterSelection{
			IsActive:    true,
			CurrentTurn: 1,
			StartedAt:   &now,
		},
		MapSelection: models.MapSelection{
			FreeMapChoice:  p.FreeMapChoice,
			Pool:           p.MapPool,
			TiebreakerMaps: p.TiebreakerMaps,
		},
		MVP:       models.MVPElection{BonusPoints: 5},
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.AppendSystemMessage("match_created", map[string]interface{}{"hostTeam": hostTeam}, now)
	maybeFinalizeRoster(m, now) // format 1 is full on arrival
	return m, nil
}
