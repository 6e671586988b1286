package model

import (
	"time"

	"github.com/google/uuid"
)

// SprintStatus is the lifecycle state of a sprint. Transitions between
// statuses go through the lifecycle package; nothing else should assign
// these values.
type SprintStatus string

const (
	StatusNotStarted SprintStatus = "NOT_STARTED"
	StatusActive     SprintStatus = "ACTIVE"
	StatusCompleted  SprintStatus = "COMPLETED"
	StatusArchived   SprintStatus = "ARCHIVED"
	StatusCancelled  SprintStatus = "CANCELLED"
	StatusDeleted    SprintStatus = "DELETED"
)

type Sprint struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Name      string       `gorm:"not null"`
	StartDate *time.Time
	EndDate   *time.Time
	Goal      string
	Status    SprintStatus `gorm:"type:varchar(20);not null;default:'NOT_STARTED'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	// DeletedAt is set iff Status is DELETED. Deliberately *time.Time and
	// not gorm.DeletedAt: the store controls soft-delete visibility itself.
	DeletedAt *time.Time `gorm:"index"`
}
