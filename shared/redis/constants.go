// shared/redis/constants.go
package redis

const (
	// Key constants for Redis match data
	AfkCooldownKeyPrefix = "afk_cooldown:{%s}:%d" // Cooldown per team: afk_cooldown:{matchId}:<team>
	MatchEventChannel    = "match:{%s}:events"    // Pub/sub channel for one match's events
	MatchLockKeyPrefix   = "match_creation:{%s}:" // Short-lived creation lock per squad pairing
)
