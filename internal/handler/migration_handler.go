package handler

import (
	"net/http"

	"sprinthub/internal/middleware"
	"sprinthub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MigrationHandler exposes the task migration operations: listing a
// sprint's incomplete tasks and moving tasks between sprints and the
// backlog.
type MigrationHandler struct {
	sprints *service.SprintService
}

func NewMigrationHandler(sprints *service.SprintService) *MigrationHandler {
	return &MigrationHandler{sprints: sprints}
}

type MoveSpecificTasksRequest struct {
	TaskIDs []string `json:"taskIds" binding:"required,min=1,dive,uuid"`
}

type MoveResult struct {
	Moved int64 `json:"moved"`
}

// GetIncompleteTasks lists the sprint's not-done, non-deleted tasks
func (h *MigrationHandler) GetIncompleteTasks(c *gin.Context) {
	sprintID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.sprints.IncompleteTasks(c.Request.Context(), middleware.ActorFrom(c), sprintID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

// MoveTasksToBacklog detaches the sprint's incomplete tasks
func (h *MigrationHandler) MoveTasksToBacklog(c *gin.Context) {
	sprintID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	moved, err := h.sprints.MoveAllToBacklog(c.Request.Context(), middleware.ActorFrom(c), sprintID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoveResult{Moved: moved})
}

// MoveTasksToSprint moves the source sprint's incomplete tasks into the
// target sprint
func (h *MigrationHandler) MoveTasksToSprint(c *gin.Context) {
	fromSprintID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	toSprintID, ok := parseIDParam(c, "toSprintId")
	if !ok {
		return
	}

	moved, err := h.sprints.MoveAllToSprint(c.Request.Context(), middleware.ActorFrom(c), fromSprintID, toSprintID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoveResult{Moved: moved})
}

// MoveSpecificTasksToBacklog detaches an explicit set of tasks
func (h *MigrationHandler) MoveSpecificTasksToBacklog(c *gin.Context) {
	taskIDs, ok := bindTaskIDs(c)
	if !ok {
		return
	}

	moved, err := h.sprints.MoveSpecificToBacklog(c.Request.Context(), middleware.ActorFrom(c), taskIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoveResult{Moved: moved})
}

// MoveSpecificTasksToSprint moves an explicit set of tasks into the target
// sprint
func (h *MigrationHandler) MoveSpecificTasksToSprint(c *gin.Context) {
	toSprintID, ok := parseIDParam(c, "toSprintId")
	if !ok {
		return
	}

	taskIDs, ok := bindTaskIDs(c)
	if !ok {
		return
	}

	moved, err := h.sprints.MoveSpecificToSprint(c.Request.Context(), middleware.ActorFrom(c), taskIDs, toSprintID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MoveResult{Moved: moved})
}

func bindTaskIDs(c *gin.Context) ([]uuid.UUID, bool) {
	var req MoveSpecificTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task IDs are required"})
		return nil, false
	}

	taskIDs := make([]uuid.UUID, len(req.TaskIDs))
	for i, raw := range req.TaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
			return nil, false
		}
		taskIDs[i] = id
	}
	return taskIDs, true
}
