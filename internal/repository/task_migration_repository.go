package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sprinthub/internal/lifecycle"
	"sprinthub/internal/model"
)

// TaskMigrationRepository moves tasks between sprints and the backlog.
// It only ever touches sprint_id and updated_at on the tasks table; task
// content belongs to the tasks service.
type TaskMigrationRepository struct {
	db *gorm.DB
}

func NewTaskMigrationRepository(db *gorm.DB) *TaskMigrationRepository {
	return &TaskMigrationRepository{db: db}
}

// ListIncomplete returns the sprint's tasks that are not done and not
// soft-deleted.
func (r *TaskMigrationRepository) ListIncomplete(ctx context.Context, sprintID uuid.UUID) ([]model.TaskSummary, error) {
	var tasks []model.TaskSummary
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("id, title, status, story_point, assignee_id").
		Where("sprint_id = ? AND status <> ? AND deleted_at IS NULL", sprintID, model.TaskStatusDone).
		Scan(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// MoveAllToBacklog detaches every incomplete, non-deleted task from the
// sprint. Returns how many tasks moved; calling it again once the sprint
// is drained moves zero.
func (r *TaskMigrationRepository) MoveAllToBacklog(ctx context.Context, sprintID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("sprint_id = ? AND status <> ? AND deleted_at IS NULL", sprintID, model.TaskStatusDone).
		Updates(map[string]interface{}{
			"sprint_id":  nil,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MoveAllToSprint reassigns every incomplete, non-deleted task from one
// sprint to another. The target eligibility check and the bulk move run in
// one transaction so the target cannot be archived in between.
func (r *TaskMigrationRepository) MoveAllToSprint(ctx context.Context, fromSprintID, toSprintID uuid.UUID) (int64, error) {
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTarget(tx, toSprintID); err != nil {
			return err
		}

		result := tx.Model(&model.Task{}).
			Where("sprint_id = ? AND status <> ? AND deleted_at IS NULL", fromSprintID, model.TaskStatusDone).
			Updates(map[string]interface{}{
				"sprint_id":  toSprintID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		moved = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// MoveSpecificToBacklog detaches the named tasks from whatever sprint they
// are in. An empty list is a no-op. The done-status filter is deliberately
// absent: callers name exactly the tasks they want moved.
func (r *TaskMigrationRepository) MoveSpecificToBacklog(ctx context.Context, taskIDs []uuid.UUID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id IN ? AND deleted_at IS NULL", taskIDs).
		Updates(map[string]interface{}{
			"sprint_id":  nil,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MoveSpecificToSprint reassigns the named tasks to the target sprint.
// An empty list is a no-op; the target must exist and accept tasks.
func (r *TaskMigrationRepository) MoveSpecificToSprint(ctx context.Context, taskIDs []uuid.UUID, toSprintID uuid.UUID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	var moved int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTarget(tx, toSprintID); err != nil {
			return err
		}

		result := tx.Model(&model.Task{}).
			Where("id IN ? AND deleted_at IS NULL", taskIDs).
			Updates(map[string]interface{}{
				"sprint_id":  toSprintID,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		moved = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// checkTarget verifies the target sprint exists, is not deleted, and can
// still receive tasks.
func checkTarget(tx *gorm.DB, toSprintID uuid.UUID) error {
	var target model.Sprint
	if err := tx.First(&target, "id = ? AND deleted_at IS NULL", toSprintID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSprintNotFound
		}
		return err
	}
	if !lifecycle.CanReceiveTasks(target.Status) {
		return ErrSprintClosed
	}
	return nil
}
