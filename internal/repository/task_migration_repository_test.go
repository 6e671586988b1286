package repository_test

import (
	"context"
	"testing"

	"sprinthub/internal/model"
	"sprinthub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTaskMigrationRepository_ListIncomplete(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	sprintID := uuid.New()
	taskID := uuid.New()
	assignee := uuid.New()

	mock.ExpectQuery(`SELECT id, title, status, story_point, assignee_id FROM "tasks" WHERE sprint_id = .* AND status <> .* AND deleted_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "story_point", "assignee_id"}).
			AddRow(taskID.String(), "Fix checkout bug", "IN_PROGRESS", 3, assignee.String()))

	// Act
	tasks, err := repo.ListIncomplete(context.Background(), sprintID)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0].ID)
	assert.Equal(t, "Fix checkout bug", tasks[0].Title)
	assert.Equal(t, 3, tasks[0].StoryPoint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveAllToBacklog(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE sprint_id = .* AND status <> .* AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	// Act
	moved, err := repo.MoveAllToBacklog(context.Background(), uuid.New())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(4), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveAllToSprint(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	fromID := uuid.New()
	toID := uuid.New()
	target := &model.Sprint{ID: toID, ProjectID: uuid.New(), Name: "Sprint 2", Status: model.StatusNotStarted}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .* AND deleted_at IS NULL`).
		WillReturnRows(sprintRows(target))
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE sprint_id = .* AND status <> .* AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	// Act
	moved, err := repo.MoveAllToSprint(context.Background(), fromID, toID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(2), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveAllToSprint_TargetClosed(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	toID := uuid.New()
	target := &model.Sprint{ID: toID, ProjectID: uuid.New(), Name: "Old sprint", Status: model.StatusArchived}

	// The eligibility check fails inside the transaction, so the bulk
	// update never runs and the transaction rolls back.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .* AND deleted_at IS NULL`).
		WillReturnRows(sprintRows(target))
	mock.ExpectRollback()

	// Act
	moved, err := repo.MoveAllToSprint(context.Background(), uuid.New(), toID)

	// Assert
	assert.ErrorIs(t, err, repository.ErrSprintClosed)
	assert.Equal(t, int64(0), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveAllToSprint_TargetMissing(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .* AND deleted_at IS NULL`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	// Act
	moved, err := repo.MoveAllToSprint(context.Background(), uuid.New(), uuid.New())

	// Assert
	assert.ErrorIs(t, err, repository.ErrSprintNotFound)
	assert.Equal(t, int64(0), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveSpecificToBacklog(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	taskIDs := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id IN .* AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	// Act
	moved, err := repo.MoveSpecificToBacklog(context.Background(), taskIDs)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(2), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveSpecificToBacklog_EmptyList(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	// Act
	moved, err := repo.MoveSpecificToBacklog(context.Background(), nil)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(0), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveSpecificToSprint(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	toID := uuid.New()
	target := &model.Sprint{ID: toID, ProjectID: uuid.New(), Name: "Sprint 3", Status: model.StatusActive}
	taskIDs := []uuid.UUID{uuid.New()}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "sprints" WHERE id = .* AND deleted_at IS NULL`).
		WillReturnRows(sprintRows(target))
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id IN .* AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	moved, err := repo.MoveSpecificToSprint(context.Background(), taskIDs, toID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(1), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskMigrationRepository_MoveSpecificToSprint_EmptyList(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskMigrationRepository(gormDB)

	// Act
	moved, err := repo.MoveSpecificToSprint(context.Background(), nil, uuid.New())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(0), moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
