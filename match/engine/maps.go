// match/engine/maps.go
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/stricker-gg/go-services/shared/models"
)

// BanMap records a referent's single map ban. Bans alternate strictly by team
// turn; after the second ban the surviving map (drawn at random when more
// than one remains) becomes the selected map and the match moves to ready.
func BanMap(m *models.Match, team int, actorID, mapName string, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}

	bans := &m.MapSelection.Bans
	if teamBan(bans, team) == mapName && mapName != "" {
		return nil, nil // replay
	}
	if m.Status != models.StatusMapVote || m.MapSelection.FreeMapChoice {
		return nil, ErrInvalidPhase
	}
	if teamBan(bans, team) != "" {
		return nil, ErrAlreadyBanned
	}
	if bans.CurrentTurn != team {
		return nil, ErrNotYourTurn
	}
	if !poolContains(m.MapSelection.Pool, mapName) {
		return nil, ErrMapNotInPool
	}
	if teamBan(bans, opponent(team)) == mapName {
		return nil, ErrAlreadyBanned
	}

	t := now
	if team == 1 {
		bans.Team1BannedMap = mapName
		bans.Team1BannedAt = &t
	} else {
		bans.Team2BannedMap = mapName
		bans.Team2BannedAt = &t
	}
	bans.CurrentTurn = opponent(team)
	m.AppendSystemMessage("map_banned", map[string]interface{}{"team": team, "map": mapName}, now)

	events := []models.EventType{models.EventMapBanUpdated}
	if bans.Team1BannedMap != "" && bans.Team2BannedMap != "" {
		selectRemainingMap(m, now)
		transition(m, models.StatusReady, now)
		events = append(events, models.EventMapSelected)
	}
	return events, nil
}

// selectRemainingMap picks the played map from the undecided pool once both
// bans are in. With more than one survivor the pick is a random draw.
func selectRemainingMap(m *models.Match, now time.Time) {
	ms := &m.MapSelection
	var remaining []models.MapInfo
	for _, mp := range ms.Pool {
		if mp.Name != ms.Bans.Team1BannedMap && mp.Name != ms.Bans.Team2BannedMap {
			remaining = append(remaining, mp)
		}
	}
	if len(remaining) == 0 {
		return // pool misconfigured at creation; nothing to select
	}

	picked := remaining[0]
	if len(remaining) > 1 {
		picked = remaining[rand.Intn(len(remaining))]
	}
	ms.SelectedMap = &picked
	ms.Maps = []models.PlayedMap{{Name: picked.Name, Order: 1}}
	m.AppendSystemMessage("map_selected", map[string]interface{}{"map": picked.Name}, now)
}

// ChooseMap records a team's own map pick in free-choice mode. Each team names
// the map it will host; once both picks are in, they become games 1 (team 1's
// map) and 2 (team 2's map) of the series.
func ChooseMap(m *models.Match, team int, actorID, mapName string, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}

	ms := &m.MapSelection
	if existing := teamChoice(ms, team); existing != nil {
		if existing.Name == mapName {
			return nil, nil // replay
		}
		return nil, ErrAlreadyChosen
	}
	if !ms.FreeMapChoice {
		return nil, ErrInvalidPhase
	}
	if m.Status != models.StatusReady && m.Status != models.StatusInProgress {
		return nil, ErrInvalidPhase
	}
	if mapName == "" {
		return nil, ErrMapNotInPool
	}

	choice := &models.MapInfo{Name: mapName}
	if team == 1 {
		ms.Team1ChosenMap = choice
	} else {
		ms.Team2ChosenMap = choice
	}
	m.AppendSystemMessage("map_chosen", map[string]interface{}{"team": team, "map": mapName}, now)

	events := []models.EventType{models.EventMapChoiceUpdated}
	if ms.Team1ChosenMap != nil && ms.Team2ChosenMap != nil {
		ms.Maps = []models.PlayedMap{
			{Name: ms.Team1ChosenMap.Name, Order: 1},
			{Name: ms.Team2ChosenMap.Name, Order: 2},
		}
		events = append(events, models.EventMapSelected)
	}
	return events, nil
}

// RecordGameResult records the final score of one game of the series. The
// winner is derived from the goals; a drawn score is rejected. A replay of an
// identical score is a success no-op, a conflicting re-report is rejected.
func RecordGameResult(m *models.Match, team int, actorID string, order, team1Goals, team2Goals int, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}
	if team1Goals < 0 || team2Goals < 0 || team1Goals == team2Goals {
		return nil, ErrInvalidScore
	}

	game := findGame(m, order)
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Winner != 0 {
		if game.Team1Goals == team1Goals && game.Team2Goals == team2Goals {
			return nil, nil // replay
		}
		return nil, ErrAlreadyReported
	}
	if m.Status != models.StatusReady && m.Status != models.StatusInProgress {
		return nil, ErrInvalidPhase
	}

	game.Team1Goals = team1Goals
	game.Team2Goals = team2Goals
	if team1Goals > team2Goals {
		game.Winner = 1
	} else {
		game.Winner = 2
	}
	m.AppendSystemMessage("game_result_recorded", map[string]interface{}{
		"order":      order,
		"winner":     game.Winner,
		"team1Goals": team1Goals,
		"team2Goals": team2Goals,
	}, now)
	return []models.EventType{models.EventGameResultRecorded}, nil
}

// ResolveTiebreaker settles a free-choice series whose first two games split
// 1-1. Goal average decides first: the team ahead on aggregate goals takes the
// series without a third game. Only on a level aggregate is a third map drawn
// from the ordered tiebreaker list, skipping anything already played.
func ResolveTiebreaker(m *models.Match, team int, actorID string, now time.Time) ([]models.EventType, error) {
	if m.Roster(team) == nil {
		return nil, ErrInvalidTeam
	}
	if !m.IsReferentOf(team, actorID) {
		return nil, ErrUnauthorized
	}

	ms := &m.MapSelection
	if len(ms.Maps) >= 3 || m.HasSystemMessage("tiebreaker_goal_average") {
		return nil, nil // already resolved
	}
	if !ms.FreeMapChoice {
		return nil, ErrInvalidPhase
	}
	if m.Status != models.StatusReady && m.Status != models.StatusInProgress {
		return nil, ErrInvalidPhase
	}
	if len(ms.Maps) < 2 || ms.Maps[0].Winner == 0 || ms.Maps[1].Winner == 0 ||
		ms.Maps[0].Winner == ms.Maps[1].Winner {
		return nil, ErrInvalidPhase // no 1-1 split to resolve
	}

	team1Goals := ms.Maps[0].Team1Goals + ms.Maps[1].Team1Goals
	team2Goals := ms.Maps[0].Team2Goals + ms.Maps[1].Team2Goals
	if team1Goals != team2Goals {
		leader := 1
		if team2Goals > team1Goals {
			leader = 2
		}
		m.AppendSystemMessage("tiebreaker_goal_average", map[string]interface{}{
			"team":       leader,
			"team1Goals": team1Goals,
			"team2Goals": team2Goals,
		}, now)
		return []models.EventType{models.EventTiebreakerResolved}, nil
	}

	third, err := firstUnplayedTiebreaker(ms)
	if err != nil {
		return nil, err
	}
	ms.Maps = append(ms.Maps, models.PlayedMap{Name: third.Name, Order: 3})
	m.AppendSystemMessage("tiebreaker_map", map[string]interface{}{"map": third.Name}, now)
	return []models.EventType{models.EventTiebreakerResolved, models.EventMapSelected}, nil
}

// firstUnplayedTiebreaker walks the ordered tiebreaker list and returns the
// first entry not already played in the series.
func firstUnplayedTiebreaker(ms *models.MapSelection) (models.MapInfo, error) {
	for _, candidate := range ms.TiebreakerMaps {
		played := false
		for _, p := range ms.Maps {
			if p.Name == candidate.Name {
				played = true
				break
			}
		}
		if !played {
			return candidate, nil
		}
	}
	return models.MapInfo{}, fmt.Errorf("no unplayed tiebreaker map available")
}

func teamChoice(ms *models.MapSelection, team int) *models.MapInfo {
	if team == 1 {
		return ms.Team1ChosenMap
	}
	return ms.Team2ChosenMap
}

func findGame(m *models.Match, order int) *models.PlayedMap {
	for i := range m.MapSelection.Maps {
		if m.MapSelection.Maps[i].Order == order {
			return &m.MapSelection.Maps[i]
		}
	}
	return nil
}

func teamBan(bans *models.MapBans, team int) string {
	if team == 1 {
		return bans.Team1BannedMap
	}
	return bans.Team2BannedMap
}

func poolContains(pool []models.MapInfo, name string) bool {
	for _, mp := range pool {
		if mp.Name == name {
			return true
		}
	}
	return false
}

func opponent(team int) int {
	if team == 1 {
		return 2
	}
	return 1
}
