// shared/models/events.go
package models

import "time"

// EventType identifies one fan-out notification. Clients treat every event as
// "refetch the match snapshot", never as a delta to merge.
type EventType string

const (
	EventMatchCreated       EventType = "match_created"
	EventRosterUpdated      EventType = "roster_updated"
	EventRosterComplete     EventType = "roster_complete"
	EventMapBanUpdated      EventType = "map_ban_updated"
	EventMapChoiceUpdated   EventType = "map_choice_updated"
	EventMapSelected        EventType = "map_selected"
	EventGameResultRecorded EventType = "game_result_recorded"
	EventTiebreakerResolved EventType = "tiebreaker_resolved"
	EventGameCodeSet        EventType = "game_code_set"
	EventMatchStarted       EventType = "match_started"
	EventResultUpdated      EventType = "result_updated"
	EventMatchCompleted     EventType = "match_completed"
	EventMatchDisputed      EventType = "match_disputed"
	EventCancelVoteUpdate   EventType = "cancel_vote_updated"
	EventMatchCancelled     EventType = "match_cancelled"
	EventArbitratorCalled   EventType = "arbitrator_called"
	EventAfkReported        EventType = "afk_reported"
	EventChatMessage        EventType = "chat_message"
	EventMVPUpdated         EventType = "mvp_updated"
	EventStatusOverridden   EventType = "status_overridden"
)

// MatchEvent is the envelope published on a match's event channel.
type MatchEvent struct {
	Type    EventType `json:"type"`
	MatchID string    `json:"matchId"`
	At      time.Time `json:"at"`
}
