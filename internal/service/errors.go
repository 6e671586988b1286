package service

import "errors"

var (
	// ErrNotFound is returned when the referenced sprint (or migration
	// target) does not exist.
	ErrNotFound = errors.New("sprint not found")

	// ErrPermissionDenied is returned for every authorization failure,
	// including an unreachable membership authority (fail closed). The
	// message is deliberately generic; callers never learn which flag
	// was missing.
	ErrPermissionDenied = errors.New("insufficient permissions")
)

// ValidationError reports malformed or missing input. Rejected before any
// store access.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// StateConflictError reports a transition attempted from an illegal source
// state, or a migration into a closed sprint.
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }
