// match/service/errors.go
package service

import "fmt"

// Custom Errors for clear communication to API layer. The protocol rejection
// classes themselves live in the engine package; these cover concerns the
// coordinator adds on top.
var (
	ErrMatchNotFound      = fmt.Errorf("match not found")
	ErrCreationInProgress = fmt.Errorf("a match for this pairing is already being created")
)
