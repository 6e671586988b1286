package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sprinthub/internal/model"
)

type SprintRepository struct {
	db *gorm.DB
}

func NewSprintRepository(db *gorm.DB) *SprintRepository {
	return &SprintRepository{db: db}
}

// Create adds a new sprint. Status is set by the caller (NOT_STARTED for
// fresh sprints).
func (r *SprintRepository) Create(ctx context.Context, sprint *model.Sprint) error {
	return r.db.WithContext(ctx).Create(sprint).Error
}

// GetByID retrieves a sprint by its ID, excluding soft-deleted ones.
func (r *SprintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	result := r.db.WithContext(ctx).First(&sprint, "id = ? AND deleted_at IS NULL", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, result.Error
	}
	return &sprint, nil
}

// GetByIDAny retrieves a sprint regardless of soft deletion. Used by the
// restore and audit paths, which need to see DELETED sprints.
func (r *SprintRepository) GetByIDAny(ctx context.Context, id uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	result := r.db.WithContext(ctx).First(&sprint, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, result.Error
	}
	return &sprint, nil
}

// GetAll retrieves every non-deleted sprint.
func (r *SprintRepository) GetAll(ctx context.Context) ([]model.Sprint, error) {
	var sprints []model.Sprint
	result := r.db.WithContext(ctx).Where("deleted_at IS NULL").Find(&sprints)
	if result.Error != nil {
		return nil, result.Error
	}
	return sprints, nil
}

// GetByProject retrieves a project's sprints for normal use: cancelled and
// deleted sprints are excluded.
func (r *SprintRepository) GetByProject(ctx context.Context, projectID uuid.UUID) ([]model.Sprint, error) {
	var sprints []model.Sprint
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND deleted_at IS NULL AND status NOT IN ?", projectID,
			[]model.SprintStatus{model.StatusDeleted, model.StatusCancelled}).
		Order("created_at ASC").
		Find(&sprints)
	if result.Error != nil {
		return nil, result.Error
	}
	return sprints, nil
}

// GetActiveByProject returns the project's ACTIVE sprint, or nil if there
// is none.
func (r *SprintRepository) GetActiveByProject(ctx context.Context, projectID uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	result := r.db.WithContext(ctx).
		First(&sprint, "project_id = ? AND status = ? AND deleted_at IS NULL", projectID, model.StatusActive)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &sprint, nil
}

// GetLastByProject returns the most recent non-deleted sprint by end date,
// or nil if the project has none.
func (r *SprintRepository) GetLastByProject(ctx context.Context, projectID uuid.UUID) (*model.Sprint, error) {
	var sprint model.Sprint
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND deleted_at IS NULL", projectID).
		Order("end_date DESC").
		First(&sprint)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &sprint, nil
}

// GetDeletedByProject returns the project's soft-deleted sprints for the
// audit view, most recently deleted first.
func (r *SprintRepository) GetDeletedByProject(ctx context.Context, projectID uuid.UUID) ([]model.Sprint, error) {
	var sprints []model.Sprint
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, model.StatusDeleted).
		Order("deleted_at DESC").
		Find(&sprints)
	if result.Error != nil {
		return nil, result.Error
	}
	return sprints, nil
}

// GetCancelledByProject returns the project's cancelled sprints for the
// audit view.
func (r *SprintRepository) GetCancelledByProject(ctx context.Context, projectID uuid.UUID) ([]model.Sprint, error) {
	var sprints []model.Sprint
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, model.StatusCancelled).
		Order("updated_at DESC").
		Find(&sprints)
	if result.Error != nil {
		return nil, result.Error
	}
	return sprints, nil
}

// GetStatusesByProject returns the distinct statuses present among the
// project's visible sprints (filter dropdowns).
func (r *SprintRepository) GetStatusesByProject(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	var statuses []string
	result := r.db.WithContext(ctx).
		Model(&model.Sprint{}).
		Distinct("status").
		Where("project_id = ? AND deleted_at IS NULL AND status NOT IN ?", projectID,
			[]model.SprintStatus{model.StatusDeleted, model.StatusCancelled}).
		Order("status").
		Pluck("status", &statuses)
	if result.Error != nil {
		return nil, result.Error
	}
	return statuses, nil
}

// FilterOptions narrows the calendar listing. Zero values mean "no filter".
type FilterOptions struct {
	Search    string
	Statuses  []string
	StartDate *time.Time
	EndDate   *time.Time
}

// Filter returns a project's visible sprints matching the options, newest
// start date first.
func (r *SprintRepository) Filter(ctx context.Context, projectID uuid.UUID, opts FilterOptions) ([]model.Sprint, error) {
	query := r.db.WithContext(ctx).
		Where("project_id = ? AND deleted_at IS NULL AND status NOT IN ?", projectID,
			[]model.SprintStatus{model.StatusDeleted, model.StatusCancelled})

	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("name ILIKE ? OR goal ILIKE ?", pattern, pattern)
	}
	if len(opts.Statuses) > 0 {
		query = query.Where("status IN ?", opts.Statuses)
	}
	if opts.StartDate != nil {
		query = query.Where("start_date >= ? OR end_date >= ?", opts.StartDate, opts.StartDate)
	}
	if opts.EndDate != nil {
		query = query.Where("start_date <= ? OR end_date <= ?", opts.EndDate, opts.EndDate)
	}

	var sprints []model.Sprint
	result := query.Order("start_date DESC").Find(&sprints)
	if result.Error != nil {
		return nil, result.Error
	}
	return sprints, nil
}

// UpdateDetails changes name, dates and goal. Status is never touched here;
// that only happens through the transition methods below.
func (r *SprintRepository) UpdateDetails(ctx context.Context, id uuid.UUID, name string, startDate, endDate *time.Time, goal string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Sprint{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"name":       name,
			"start_date": startDate,
			"end_date":   endDate,
			"goal":       goal,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSprintNotFound
	}
	return nil
}

// The transition methods below are conditional updates: the WHERE clause
// re-checks the from-state so that two concurrent callers cannot both win.
// Zero rows affected surfaces as ErrStaleTransition and the caller decides
// whether that was a disappearance or a state conflict.

// Start flips NOT_STARTED to ACTIVE, stamping the start date if unset.
func (r *SprintRepository) Start(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.transition(ctx, id, []model.SprintStatus{model.StatusNotStarted}, map[string]interface{}{
		"status":     model.StatusActive,
		"start_date": gorm.Expr("COALESCE(start_date, ?)", now),
		"updated_at": now,
	})
}

// Complete flips ACTIVE to COMPLETED and stamps the end date.
func (r *SprintRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.transition(ctx, id, []model.SprintStatus{model.StatusActive}, map[string]interface{}{
		"status":     model.StatusCompleted,
		"end_date":   now,
		"updated_at": now,
	})
}

// Archive flips COMPLETED to ARCHIVED.
func (r *SprintRepository) Archive(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, []model.SprintStatus{model.StatusCompleted}, map[string]interface{}{
		"status":     model.StatusArchived,
		"updated_at": time.Now(),
	})
}

// Cancel flips NOT_STARTED or ACTIVE to CANCELLED. Tasks are left alone.
func (r *SprintRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, []model.SprintStatus{model.StatusNotStarted, model.StatusActive}, map[string]interface{}{
		"status":     model.StatusCancelled,
		"updated_at": time.Now(),
	})
}

// SoftDelete flips NOT_STARTED to DELETED and stamps deleted_at.
func (r *SprintRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.transition(ctx, id, []model.SprintStatus{model.StatusNotStarted}, map[string]interface{}{
		"status":     model.StatusDeleted,
		"deleted_at": now,
		"updated_at": now,
	})
}

// Restore brings a CANCELLED or DELETED sprint back to NOT_STARTED and
// clears deleted_at.
func (r *SprintRepository) Restore(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, []model.SprintStatus{model.StatusCancelled, model.StatusDeleted}, map[string]interface{}{
		"status":     model.StatusNotStarted,
		"deleted_at": nil,
		"updated_at": time.Now(),
	})
}

func (r *SprintRepository) transition(ctx context.Context, id uuid.UUID, from []model.SprintStatus, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Sprint{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleTransition
	}
	return nil
}
