package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"sprinthub/internal/handler"
	"sprinthub/internal/model"
	"sprinthub/internal/permission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetIncompleteTasks(t *testing.T) {
	// Arrange
	router, store, tasks, resolver := setupRouter(permission.Enforce)

	userID := uuid.New()
	sprintID := uuid.New()
	projectID := uuid.New()
	stored := &model.Sprint{ID: sprintID, ProjectID: projectID, Name: "Sprint 1", Status: model.StatusActive}
	summaries := []model.TaskSummary{
		{ID: uuid.New(), Title: "Fix login", Status: "IN_PROGRESS", StoryPoint: 3},
		{ID: uuid.New(), Title: "Update docs", Status: "TO_DO", StoryPoint: 1},
	}

	store.On("GetByID", mock.Anything, sprintID).Return(stored, nil)
	resolver.On("Resolve", mock.Anything, userID, projectID).
		Return(permission.PermissionSet{}, nil)
	tasks.On("ListIncomplete", mock.Anything, sprintID).Return(summaries, nil)

	// Act
	resp := doJSON(router, "GET", "/api/sprints/"+sprintID.String()+"/incomplete-tasks", nil, userID.String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response struct {
		Data []model.TaskSummary `json:"data"`
	}
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response.Data, 2)
	assert.Equal(t, "Fix login", response.Data[0].Title)
	tasks.AssertExpectations(t)
}

func TestMoveTasksToBacklog(t *testing.T) {
	// Arrange
	router, store, tasks, resolver := setupRouter(permission.Enforce)

	userID := uuid.New()
	sprintID := uuid.New()
	projectID := uuid.New()
	stored := &model.Sprint{ID: sprintID, ProjectID: projectID, Name: "Sprint 1", Status: model.StatusCompleted}

	store.On("GetByID", mock.Anything, sprintID).Return(stored, nil)
	resolver.On("Resolve", mock.Anything, userID, projectID).
		Return(permission.PermissionSet{CanManageSprints: true}, nil)
	tasks.On("MoveAllToBacklog", mock.Anything, sprintID).Return(int64(5), nil)

	// Act
	resp := doJSON(router, "PUT", "/api/sprints/"+sprintID.String()+"/move-tasks-to-backlog", nil, userID.String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.MoveResult
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), response.Moved)
	tasks.AssertExpectations(t)
}

func TestMoveTasksToSprint(t *testing.T) {
	// Arrange
	router, store, tasks, resolver := setupRouter(permission.Enforce)

	userID := uuid.New()
	fromID := uuid.New()
	toID := uuid.New()
	projectID := uuid.New()
	from := &model.Sprint{ID: fromID, ProjectID: projectID, Name: "Sprint 1", Status: model.StatusCompleted}

	store.On("GetByID", mock.Anything, fromID).Return(from, nil)
	resolver.On("Resolve", mock.Anything, userID, projectID).
		Return(permission.PermissionSet{IsScrumMaster: true}, nil)
	tasks.On("MoveAllToSprint", mock.Anything, fromID, toID).Return(int64(2), nil)

	// Act
	resp := doJSON(router, "PUT", "/api/sprints/"+fromID.String()+"/move-tasks-to/"+toID.String(), nil, userID.String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.MoveResult
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), response.Moved)
	tasks.AssertExpectations(t)
}

func TestMoveSpecificTasksToBacklog(t *testing.T) {
	// Arrange
	router, _, tasks, _ := setupRouter(permission.Enforce)

	taskIDs := []uuid.UUID{uuid.New(), uuid.New()}
	tasks.On("MoveSpecificToBacklog", mock.Anything, taskIDs).Return(int64(2), nil)

	reqBody := handler.MoveSpecificTasksRequest{
		TaskIDs: []string{taskIDs[0].String(), taskIDs[1].String()},
	}

	// Act
	resp := doJSON(router, "PUT", "/api/sprints/move-specific-tasks-to-backlog", reqBody, uuid.New().String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.MoveResult
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), response.Moved)
	tasks.AssertExpectations(t)
}

func TestMoveSpecificTasksToBacklog_MissingIDs(t *testing.T) {
	// Arrange
	router, _, tasks, _ := setupRouter(permission.Enforce)

	// Act
	resp := doJSON(router, "PUT", "/api/sprints/move-specific-tasks-to-backlog", map[string]interface{}{}, uuid.New().String())

	// Assert
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var response map[string]string
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Task IDs are required", response["error"])
	tasks.AssertNotCalled(t, "MoveSpecificToBacklog", mock.Anything, mock.Anything)
}

func TestMoveSpecificTasksToSprint(t *testing.T) {
	// Arrange
	router, store, tasks, resolver := setupRouter(permission.Enforce)

	userID := uuid.New()
	toID := uuid.New()
	projectID := uuid.New()
	target := &model.Sprint{ID: toID, ProjectID: projectID, Name: "Sprint 2", Status: model.StatusActive}
	taskIDs := []uuid.UUID{uuid.New()}

	store.On("GetByID", mock.Anything, toID).Return(target, nil)
	resolver.On("Resolve", mock.Anything, userID, projectID).
		Return(permission.PermissionSet{CanManageSprints: true}, nil)
	tasks.On("MoveSpecificToSprint", mock.Anything, taskIDs, toID).Return(int64(1), nil)

	reqBody := handler.MoveSpecificTasksRequest{TaskIDs: []string{taskIDs[0].String()}}

	// Act
	resp := doJSON(router, "PUT", "/api/sprints/move-specific-tasks-to-sprint/"+toID.String(), reqBody, userID.String())

	// Assert
	assert.Equal(t, http.StatusOK, resp.Code)

	var response handler.MoveResult
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), response.Moved)
	tasks.AssertExpectations(t)
}

func TestMoveSpecificTasksToSprint_ArchivedTarget(t *testing.T) {
	// Arrange
	router, store, tasks, resolver := setupRouter(permission.Enforce)

	userID := uuid.New()
	toID := uuid.New()
	projectID := uuid.New()
	target := &model.Sprint{ID: toID, ProjectID: projectID, Name: "Old sprint", Status: model.StatusArchived}

	store.On("GetByID", mock.Anything, toID).Return(target, nil)
	resolver.On("Resolve", mock.Anything, userID, projectID).
		Return(permission.PermissionSet{IsOwner: true}, nil)

	reqBody := handler.MoveSpecificTasksRequest{TaskIDs: []string{uuid.New().String()}}

	// Act
	resp := doJSON(router, "PUT", "/api/sprints/move-specific-tasks-to-sprint/"+toID.String(), reqBody, userID.String())

	// Assert
	assert.Equal(t, http.StatusConflict, resp.Code)
	tasks.AssertNotCalled(t, "MoveSpecificToSprint", mock.Anything, mock.Anything, mock.Anything)
}
