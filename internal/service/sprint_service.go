package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"sprinthub/internal/lifecycle"
	"sprinthub/internal/model"
	"sprinthub/internal/permission"
	"sprinthub/internal/repository"
)

// SprintStore is the persistence boundary for sprints.
type SprintStore interface {
	Create(ctx context.Context, sprint *model.Sprint) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sprint, error)
	GetByIDAny(ctx context.Context, id uuid.UUID) (*model.Sprint, error)
	GetAll(ctx context.Context) ([]model.Sprint, error)
	GetByProject(ctx context.Context, projectID uuid.UUID) ([]model.Sprint, error)
	GetActiveByProject(ctx context.Context, projectID uuid.UUID) (*model.Sprint, error)
	GetLastByProject(ctx context.Context, projectID uuid.UUID) (*model.Sprint, error)
	GetDeletedByProject(ctx context.Context, projectID uuid.UUID) ([]model.Sprint, error)
	GetCancelledByProject(ctx context.Context, projectID uuid.UUID) ([]model.Sprint, error)
	GetStatusesByProject(ctx context.Context, projectID uuid.UUID) ([]string, error)
	Filter(ctx context.Context, projectID uuid.UUID, opts repository.FilterOptions) ([]model.Sprint, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, name string, startDate, endDate *time.Time, goal string) error
	Start(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID) error
	Archive(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

// TaskMigrator is the boundary to the task migration engine.
type TaskMigrator interface {
	ListIncomplete(ctx context.Context, sprintID uuid.UUID) ([]model.TaskSummary, error)
	MoveAllToBacklog(ctx context.Context, sprintID uuid.UUID) (int64, error)
	MoveAllToSprint(ctx context.Context, fromSprintID, toSprintID uuid.UUID) (int64, error)
	MoveSpecificToBacklog(ctx context.Context, taskIDs []uuid.UUID) (int64, error)
	MoveSpecificToSprint(ctx context.Context, taskIDs []uuid.UUID, toSprintID uuid.UUID) (int64, error)
}

// SprintService orchestrates the sprint lifecycle: validate input, resolve
// permission, check the transition guard, then mutate.
type SprintService struct {
	sprints SprintStore
	tasks   TaskMigrator
	perms   permission.Resolver
	policy  permission.Policy
}

func NewSprintService(sprints SprintStore, tasks TaskMigrator, perms permission.Resolver, policy permission.Policy) *SprintService {
	return &SprintService{
		sprints: sprints,
		tasks:   tasks,
		perms:   perms,
		policy:  policy,
	}
}

type CreateSprintInput struct {
	ProjectID uuid.UUID
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
	Goal      string
}

func (in CreateSprintInput) validate() error {
	var result *multierror.Error
	if strings.TrimSpace(in.Name) == "" {
		result = multierror.Append(result, errors.New("sprint name cannot be empty"))
	}
	if in.ProjectID == uuid.Nil {
		result = multierror.Append(result, errors.New("project ID is required"))
	}
	if in.StartDate == nil || in.EndDate == nil {
		result = multierror.Append(result, errors.New("start date and end date are required"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

type UpdateSprintInput struct {
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
	Goal      string
}

func (in UpdateSprintInput) validate() error {
	var result *multierror.Error
	if strings.TrimSpace(in.Name) == "" {
		result = multierror.Append(result, errors.New("sprint name cannot be empty"))
	}
	if in.StartDate == nil || in.EndDate == nil {
		result = multierror.Append(result, errors.New("start date and end date are required"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// authorize resolves the actor's permission set and evaluates the
// capability. System actors pass only under SkipForTrustedCaller. Any
// resolver failure is a deny.
func (s *SprintService) authorize(ctx context.Context, actor permission.Actor, projectID uuid.UUID, cap permission.Capability) error {
	if actor.IsSystem() {
		if s.policy == permission.SkipForTrustedCaller {
			return nil
		}
		return ErrPermissionDenied
	}

	userID, _ := actor.UserID()
	set, err := s.perms.Resolve(ctx, userID, projectID)
	if err != nil {
		return ErrPermissionDenied
	}
	if !set.Allows(cap) {
		return ErrPermissionDenied
	}
	return nil
}

// Create makes a new NOT_STARTED sprint.
func (s *SprintService) Create(ctx context.Context, actor permission.Actor, in CreateSprintInput) (*model.Sprint, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, in.ProjectID, permission.CreateSprint); err != nil {
		return nil, err
	}

	sprint := &model.Sprint{
		ID:        uuid.New(),
		ProjectID: in.ProjectID,
		Name:      in.Name,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Goal:      in.Goal,
		Status:    model.StatusNotStarted,
	}
	if err := s.sprints.Create(ctx, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

// Get returns a sprint by id.
func (s *SprintService) Get(ctx context.Context, actor permission.Actor, id uuid.UUID) (*model.Sprint, error) {
	sprint, err := s.sprints.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if err := s.authorize(ctx, actor, sprint.ProjectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

// ListAll returns every non-deleted sprint across projects.
func (s *SprintService) ListAll(ctx context.Context) ([]model.Sprint, error) {
	return s.sprints.GetAll(ctx)
}

// ListByProject returns a project's sprints, excluding cancelled and
// deleted ones.
func (s *SprintService) ListByProject(ctx context.Context, actor permission.Actor, projectID uuid.UUID) ([]model.Sprint, error) {
	if err := s.authorize(ctx, actor, projectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	return s.sprints.GetByProject(ctx, projectID)
}

// ActiveByProject returns the project's currently active sprint, or nil.
func (s *SprintService) ActiveByProject(ctx context.Context, actor permission.Actor, projectID uuid.UUID) (*model.Sprint, error) {
	if err := s.authorize(ctx, actor, projectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	return s.sprints.GetActiveByProject(ctx, projectID)
}

// LastByProject returns the most recent non-deleted sprint by end date.
func (s *SprintService) LastByProject(ctx context.Context, actor permission.Actor, projectID uuid.UUID) (*model.Sprint, error) {
	if err := s.authorize(ctx, actor, projectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	sprint, err := s.sprints.GetLastByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, ErrNotFound
	}
	return sprint, nil
}

// DeletedByProject is the audit view of soft-deleted sprints. Gated like
// delete itself.
func (s *SprintService) DeletedByProject(ctx context.Context, actor permission.Actor, projectID uuid.UUID) ([]model.Sprint, error) {
	if err := s.authorize(ctx, actor, projectID, permission.DeleteSprint); err != nil {
		return nil, err
	}
	return s.sprints.GetDeletedByProject(ctx, projectID)
}

// CancelledByProject is the audit view of cancelled sprints.
func (s *SprintService) CancelledByProject(ctx context.Context, actor permission.Actor, projectID uuid.UUID) ([]model.Sprint, error) {
	if err := s.authorize(ctx, actor, projectID, permission.DeleteSprint); err != nil {
		return nil, err
	}
	return s.sprints.GetCancelledByProject(ctx, projectID)
}

// StatusesByProject lists the distinct statuses among a project's visible
// sprints.
func (s *SprintService) StatusesByProject(ctx context.Context, actor permission.Actor, projectID uuid.UUID) ([]string, error) {
	if err := s.authorize(ctx, actor, projectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	return s.sprints.GetStatusesByProject(ctx, projectID)
}

// FilterCalendar returns the project's sprints matching the calendar
// filters.
func (s *SprintService) FilterCalendar(ctx context.Context, actor permission.Actor, projectID uuid.UUID, opts repository.FilterOptions) ([]model.Sprint, error) {
	if err := s.authorize(ctx, actor, projectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	return s.sprints.Filter(ctx, projectID, opts)
}

// Update changes name, dates and goal. Status never changes here.
func (s *SprintService) Update(ctx context.Context, actor permission.Actor, id uuid.UUID, in UpdateSprintInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	sprint, err := s.sprints.GetByID(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if err := s.authorize(ctx, actor, sprint.ProjectID, permission.UpdateSprint); err != nil {
		return err
	}
	return mapStoreErr(s.sprints.UpdateDetails(ctx, id, in.Name, in.StartDate, in.EndDate, in.Goal))
}

// Start moves a sprint to ACTIVE.
func (s *SprintService) Start(ctx context.Context, actor permission.Actor, id uuid.UUID) error {
	return s.runTransition(ctx, actor, id, permission.StartSprint, false,
		guardOf(lifecycle.Start), s.sprints.Start)
}

// Complete moves a sprint to COMPLETED.
func (s *SprintService) Complete(ctx context.Context, actor permission.Actor, id uuid.UUID) error {
	return s.runTransition(ctx, actor, id, permission.EndSprint, false,
		guardOf(lifecycle.Complete), s.sprints.Complete)
}

// Archive moves a completed sprint to ARCHIVED.
func (s *SprintService) Archive(ctx context.Context, actor permission.Actor, id uuid.UUID) error {
	return s.runTransition(ctx, actor, id, permission.EndSprint, false,
		guardOf(lifecycle.Archive), s.sprints.Archive)
}

// Cancel moves a NOT_STARTED or ACTIVE sprint to CANCELLED. Tasks in the
// sprint are left where they are; migrating them is a separate call.
func (s *SprintService) Cancel(ctx context.Context, actor permission.Actor, id uuid.UUID) error {
	return s.runTransition(ctx, actor, id, permission.DeleteSprint, false,
		func(st model.SprintStatus) error {
			if _, err := lifecycle.Cancel(st); err != nil {
				return &StateConflictError{Message: "only NOT_STARTED or ACTIVE sprints can be cancelled"}
			}
			return nil
		}, s.sprints.Cancel)
}

// SoftDelete marks a NOT_STARTED sprint DELETED. Active sprints have to be
// cancelled first; the message says so.
func (s *SprintService) SoftDelete(ctx context.Context, actor permission.Actor, id uuid.UUID) error {
	return s.runTransition(ctx, actor, id, permission.DeleteSprint, false,
		func(st model.SprintStatus) error {
			if st == model.StatusActive {
				return &StateConflictError{Message: "active sprints must be cancelled before deletion"}
			}
			if _, err := lifecycle.SoftDelete(st); err != nil {
				return &StateConflictError{Message: "only NOT_STARTED sprints can be deleted"}
			}
			return nil
		}, s.sprints.SoftDelete)
}

// Restore brings a cancelled or deleted sprint back to NOT_STARTED.
func (s *SprintService) Restore(ctx context.Context, actor permission.Actor, id uuid.UUID) error {
	return s.runTransition(ctx, actor, id, permission.DeleteSprint, true,
		guardOf(lifecycle.Restore), s.sprints.Restore)
}

// IncompleteTasks lists a sprint's not-done, non-deleted tasks.
func (s *SprintService) IncompleteTasks(ctx context.Context, actor permission.Actor, sprintID uuid.UUID) ([]model.TaskSummary, error) {
	sprint, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if err := s.authorize(ctx, actor, sprint.ProjectID, permission.ViewSprint); err != nil {
		return nil, err
	}
	return s.tasks.ListIncomplete(ctx, sprintID)
}

// MoveAllToBacklog detaches a sprint's incomplete tasks. Returns the number
// of tasks moved.
func (s *SprintService) MoveAllToBacklog(ctx context.Context, actor permission.Actor, sprintID uuid.UUID) (int64, error) {
	sprint, err := s.sprints.GetByID(ctx, sprintID)
	if err != nil {
		return 0, mapStoreErr(err)
	}
	if err := s.authorize(ctx, actor, sprint.ProjectID, permission.UpdateSprint); err != nil {
		return 0, err
	}
	return s.tasks.MoveAllToBacklog(ctx, sprintID)
}

// MoveAllToSprint moves a sprint's incomplete tasks to another sprint. The
// target must exist and not be completed or archived.
func (s *SprintService) MoveAllToSprint(ctx context.Context, actor permission.Actor, fromSprintID, toSprintID uuid.UUID) (int64, error) {
	from, err := s.sprints.GetByID(ctx, fromSprintID)
	if err != nil {
		return 0, mapStoreErr(err)
	}
	if err := s.authorize(ctx, actor, from.ProjectID, permission.UpdateSprint); err != nil {
		return 0, err
	}
	moved, err := s.tasks.MoveAllToSprint(ctx, fromSprintID, toSprintID)
	if err != nil {
		return 0, mapMigrationErr(err)
	}
	return moved, nil
}

// MoveSpecificToBacklog detaches the named tasks. An empty list succeeds
// trivially. No project scope exists for an arbitrary id set, so this
// operation relies on the caller policy alone (matching the upstream API).
func (s *SprintService) MoveSpecificToBacklog(ctx context.Context, actor permission.Actor, taskIDs []uuid.UUID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	return s.tasks.MoveSpecificToBacklog(ctx, taskIDs)
}

// MoveSpecificToSprint moves the named tasks into the target sprint.
func (s *SprintService) MoveSpecificToSprint(ctx context.Context, actor permission.Actor, taskIDs []uuid.UUID, toSprintID uuid.UUID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	target, err := s.sprints.GetByID(ctx, toSprintID)
	if err != nil {
		return 0, mapStoreErr(err)
	}
	if err := s.authorize(ctx, actor, target.ProjectID, permission.UpdateSprint); err != nil {
		return 0, err
	}
	if !lifecycle.CanReceiveTasks(target.Status) {
		return 0, &StateConflictError{Message: repository.ErrSprintClosed.Error()}
	}
	moved, err := s.tasks.MoveSpecificToSprint(ctx, taskIDs, toSprintID)
	if err != nil {
		return 0, mapMigrationErr(err)
	}
	return moved, nil
}

// runTransition is the shared orchestration for status changes: load,
// authorize, guard, execute. includeDeleted lets restore see DELETED rows.
func (s *SprintService) runTransition(
	ctx context.Context,
	actor permission.Actor,
	id uuid.UUID,
	cap permission.Capability,
	includeDeleted bool,
	guard func(model.SprintStatus) error,
	exec func(context.Context, uuid.UUID) error,
) error {
	var sprint *model.Sprint
	var err error
	if includeDeleted {
		sprint, err = s.sprints.GetByIDAny(ctx, id)
	} else {
		sprint, err = s.sprints.GetByID(ctx, id)
	}
	if err != nil {
		return mapStoreErr(err)
	}

	if err := s.authorize(ctx, actor, sprint.ProjectID, cap); err != nil {
		return err
	}

	if err := guard(sprint.Status); err != nil {
		return err
	}

	if err := exec(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			// Lost the race between guard check and write.
			return &StateConflictError{Message: "sprint state changed concurrently, retry the operation"}
		}
		return err
	}
	return nil
}

// guardOf adapts a lifecycle transition into a guard that reports conflicts
// with the transition's own message.
func guardOf(transition func(model.SprintStatus) (model.SprintStatus, error)) func(model.SprintStatus) error {
	return func(st model.SprintStatus) error {
		if _, err := transition(st); err != nil {
			return &StateConflictError{Message: err.Error()}
		}
		return nil
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrSprintNotFound) {
		return ErrNotFound
	}
	return err
}

func mapMigrationErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrSprintNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrSprintClosed):
		return &StateConflictError{Message: err.Error()}
	default:
		return err
	}
}
