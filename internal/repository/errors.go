package repository

import "errors"

// Common repository errors
var (
	// ErrSprintNotFound is returned when a sprint (or a migration target
	// sprint) does not exist or is soft-deleted
	ErrSprintNotFound = errors.New("sprint not found")

	// ErrStaleTransition is returned when a conditional status update
	// matched zero rows: the sprint either vanished or changed state
	// between the guard check and the write
	ErrStaleTransition = errors.New("sprint state changed concurrently")

	// ErrSprintClosed is returned when tasks are moved into a completed
	// or archived sprint
	ErrSprintClosed = errors.New("cannot move tasks to a completed or archived sprint")
)
