// match/engine/errors.go
package engine

import "fmt"

// Sentinel errors for every rejection class of the match protocol. Commands
// validate preconditions before touching the aggregate, so any of these
// errors guarantees no state change and no event.
var (
	ErrInvalidPhase        = fmt.Errorf("operation not allowed in current match phase")
	ErrUnauthorized        = fmt.Errorf("caller is not authorized for this action")
	ErrAlreadyReported     = fmt.Errorf("team already reported a different result")
	ErrAlreadyVoted        = fmt.Errorf("user already voted")
	ErrAlreadyBanned       = fmt.Errorf("map already banned")
	ErrAlreadyChosen       = fmt.Errorf("team already chose a different map")
	ErrInvalidScore        = fmt.Errorf("game score does not name a winner")
	ErrGameNotFound        = fmt.Errorf("no game with that order")
	ErrRosterFull          = fmt.Errorf("team roster is full")
	ErrHelperLimitExceeded = fmt.Errorf("team already has a helper")
	ErrUserUnavailable     = fmt.Errorf("user is not available for this match")
	ErrNotYourTurn         = fmt.Errorf("not this team's turn")
	ErrRateLimited         = fmt.Errorf("action is rate limited")
	ErrMemberNotFound      = fmt.Errorf("member not found in roster")
	ErrMapNotInPool        = fmt.Errorf("map is not in the ban pool")
	ErrInvalidTeam         = fmt.Errorf("team must be 1 or 2")
	ErrInvalidStatus       = fmt.Errorf("unknown match status")
)
