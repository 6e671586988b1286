package model

import (
	"time"

	"github.com/google/uuid"
)

// Terminal task status. Tasks in this status are never migrated.
const TaskStatusDone = "DONE"

// Task is the slice of the tasks table this service touches. Task content
// is owned by the tasks service; the migration engine only reassigns
// SprintID and bumps UpdatedAt.
type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	SprintID   *uuid.UUID `gorm:"type:uuid;index"`
	Title      string     `gorm:"not null"`
	Status     string     `gorm:"not null"`
	StoryPoint int
	AssigneeID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// TaskSummary is what migration callers see when listing incomplete tasks.
type TaskSummary struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	StoryPoint int        `json:"story_point"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}
