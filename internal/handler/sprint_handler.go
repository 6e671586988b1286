package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sprinthub/internal/middleware"
	"sprinthub/internal/model"
	"sprinthub/internal/permission"
	"sprinthub/internal/repository"
	"sprinthub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SprintHandler struct {
	sprints *service.SprintService
}

func NewSprintHandler(sprints *service.SprintService) *SprintHandler {
	return &SprintHandler{sprints: sprints}
}

type CreateSprintRequest struct {
	Name      string     `json:"name" binding:"required"`
	ProjectID string     `json:"project_id" binding:"required,uuid"`
	StartDate *time.Time `json:"start_date" binding:"required"`
	EndDate   *time.Time `json:"end_date" binding:"required"`
	Goal      string     `json:"goal"`
}

type UpdateSprintRequest struct {
	Name      string     `json:"name" binding:"required"`
	StartDate *time.Time `json:"start_date" binding:"required"`
	EndDate   *time.Time `json:"end_date" binding:"required"`
	Goal      string     `json:"goal"`
}

type SprintResponse struct {
	ID        string  `json:"id"`
	ProjectID string  `json:"project_id"`
	Name      string  `json:"name"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Goal      string  `json:"goal"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	DeletedAt *string `json:"deleted_at,omitempty"`
}

func toSprintResponse(sprint *model.Sprint) SprintResponse {
	resp := SprintResponse{
		ID:        sprint.ID.String(),
		ProjectID: sprint.ProjectID.String(),
		Name:      sprint.Name,
		Goal:      sprint.Goal,
		Status:    string(sprint.Status),
		CreatedAt: sprint.CreatedAt.Format(time.RFC3339),
		UpdatedAt: sprint.UpdatedAt.Format(time.RFC3339),
	}
	if sprint.StartDate != nil {
		s := sprint.StartDate.Format(time.RFC3339)
		resp.StartDate = &s
	}
	if sprint.EndDate != nil {
		s := sprint.EndDate.Format(time.RFC3339)
		resp.EndDate = &s
	}
	if sprint.DeletedAt != nil {
		s := sprint.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &s
	}
	return resp
}

func toSprintResponses(sprints []model.Sprint) []SprintResponse {
	responses := make([]SprintResponse, len(sprints))
	for i := range sprints {
		responses[i] = toSprintResponse(&sprints[i])
	}
	return responses
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var conflictErr *service.StateConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sprint not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Create creates a new sprint in NOT_STARTED state
func (h *SprintHandler) Create(c *gin.Context) {
	var req CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	sprint, err := h.sprints.Create(c.Request.Context(), middleware.ActorFrom(c), service.CreateSprintInput{
		ProjectID: projectID,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Goal:      req.Goal,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSprintResponse(sprint))
}

// GetAll lists every non-deleted sprint across projects
func (h *SprintHandler) GetAll(c *gin.Context) {
	sprints, err := h.sprints.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSprintResponses(sprints))
}

// GetByID returns a single sprint
func (h *SprintHandler) GetByID(c *gin.Context) {
	sprintID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sprint, err := h.sprints.Get(c.Request.Context(), middleware.ActorFrom(c), sprintID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSprintResponse(sprint))
}

// Update changes a sprint's name, dates and goal; never its status
func (h *SprintHandler) Update(c *gin.Context) {
	sprintID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := h.sprints.Update(c.Request.Context(), middleware.ActorFrom(c), sprintID, service.UpdateSprintInput{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Goal:      req.Goal,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sprint updated"})
}

// Start begins a NOT_STARTED sprint
func (h *SprintHandler) Start(c *gin.Context) {
	h.transition(c, h.sprints.Start, "Sprint started")
}

// Complete finishes an ACTIVE sprint
func (h *SprintHandler) Complete(c *gin.Context) {
	h.transition(c, h.sprints.Complete, "Sprint completed")
}

// Archive archives a COMPLETED sprint
func (h *SprintHandler) Archive(c *gin.Context) {
	h.transition(c, h.sprints.Archive, "Sprint archived")
}

// Cancel cancels a NOT_STARTED or ACTIVE sprint
func (h *SprintHandler) Cancel(c *gin.Context) {
	h.transition(c, h.sprints.Cancel, "Sprint cancelled")
}

// SoftDelete marks a NOT_STARTED sprint deleted
func (h *SprintHandler) SoftDelete(c *gin.Context) {
	h.transition(c, h.sprints.SoftDelete, "Sprint deleted")
}

// Restore brings a cancelled or deleted sprint back to NOT_STARTED
func (h *SprintHandler) Restore(c *gin.Context) {
	h.transition(c, h.sprints.Restore, "Sprint restored")
}

func (h *SprintHandler) transition(c *gin.Context, op func(context.Context, permission.Actor, uuid.UUID) error, message string) {
	sprintID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := op(c.Request.Context(), middleware.ActorFrom(c), sprintID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// GetByProject lists a project's sprints, excluding cancelled and deleted
func (h *SprintHandler) GetByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	sprints, err := h.sprints.ListByProject(c.Request.Context(), middleware.ActorFrom(c), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toSprintResponses(sprints)})
}

// GetActiveByProject returns the project's ACTIVE sprint, or null
func (h *SprintHandler) GetActiveByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	sprint, err := h.sprints.ActiveByProject(c.Request.Context(), middleware.ActorFrom(c), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if sprint == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toSprintResponse(sprint)})
}

// GetLastByProject returns the project's most recent non-deleted sprint
func (h *SprintHandler) GetLastByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	sprint, err := h.sprints.LastByProject(c.Request.Context(), middleware.ActorFrom(c), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSprintResponse(sprint))
}

// GetDeletedByProject is the audit listing of soft-deleted sprints
func (h *SprintHandler) GetDeletedByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	sprints, err := h.sprints.DeletedByProject(c.Request.Context(), middleware.ActorFrom(c), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toSprintResponses(sprints)})
}

// GetCancelledByProject is the audit listing of cancelled sprints
func (h *SprintHandler) GetCancelledByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	sprints, err := h.sprints.CancelledByProject(c.Request.Context(), middleware.ActorFrom(c), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toSprintResponses(sprints)})
}

// GetStatusesByProject lists the distinct statuses in use in a project
func (h *SprintHandler) GetStatusesByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	statuses, err := h.sprints.StatusesByProject(c.Request.Context(), middleware.ActorFrom(c), projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": statuses})
}

// FilterCalendar returns sprints matching the calendar filters
func (h *SprintHandler) FilterCalendar(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		return
	}

	opts := repository.FilterOptions{
		Search:   c.Query("search"),
		Statuses: c.QueryArray("statuses"),
	}
	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date format"})
			return
		}
		opts.StartDate = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date format"})
			return
		}
		opts.EndDate = &parsed
	}

	sprints, err := h.sprints.FilterCalendar(c.Request.Context(), middleware.ActorFrom(c), projectID, opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toSprintResponses(sprints)})
}

// parseIDParam parses a UUID path parameter, answering 400 itself on
// failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}
