package lifecycle

import (
	"fmt"

	"sprinthub/internal/model"
)

// IllegalTransitionError is returned when a transition is requested from a
// state it is not allowed from.
type IllegalTransitionError struct {
	Op   string
	From model.SprintStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a sprint in state %s", e.Op, e.From)
}

// Start moves a sprint into ACTIVE. Only NOT_STARTED sprints can start.
func Start(from model.SprintStatus) (model.SprintStatus, error) {
	if from != model.StatusNotStarted {
		return "", &IllegalTransitionError{Op: "start", From: from}
	}
	return model.StatusActive, nil
}

// Complete moves a sprint into COMPLETED. Only ACTIVE sprints can complete.
func Complete(from model.SprintStatus) (model.SprintStatus, error) {
	if from != model.StatusActive {
		return "", &IllegalTransitionError{Op: "complete", From: from}
	}
	return model.StatusCompleted, nil
}

// Archive moves a sprint into ARCHIVED. Only COMPLETED sprints can be
// archived.
func Archive(from model.SprintStatus) (model.SprintStatus, error) {
	if from != model.StatusCompleted {
		return "", &IllegalTransitionError{Op: "archive", From: from}
	}
	return model.StatusArchived, nil
}

// Cancel moves a sprint into CANCELLED. Allowed from NOT_STARTED and
// ACTIVE only; completed, archived, deleted and already-cancelled sprints
// stay as they are.
func Cancel(from model.SprintStatus) (model.SprintStatus, error) {
	if from != model.StatusNotStarted && from != model.StatusActive {
		return "", &IllegalTransitionError{Op: "cancel", From: from}
	}
	return model.StatusCancelled, nil
}

// SoftDelete moves a sprint into DELETED. Only NOT_STARTED sprints can be
// deleted; an active sprint has to be cancelled first.
func SoftDelete(from model.SprintStatus) (model.SprintStatus, error) {
	if from != model.StatusNotStarted {
		return "", &IllegalTransitionError{Op: "delete", From: from}
	}
	return model.StatusDeleted, nil
}

// Restore brings a CANCELLED or DELETED sprint back to NOT_STARTED.
func Restore(from model.SprintStatus) (model.SprintStatus, error) {
	if from != model.StatusCancelled && from != model.StatusDeleted {
		return "", &IllegalTransitionError{Op: "restore", From: from}
	}
	return model.StatusNotStarted, nil
}

// CanReceiveTasks reports whether tasks may be migrated into a sprint in
// the given state. Completed and archived sprints are closed books.
func CanReceiveTasks(s model.SprintStatus) bool {
	return s != model.StatusCompleted && s != model.StatusArchived
}
