package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sprinthub/internal/config"
	"sprinthub/internal/handler"
	"sprinthub/internal/middleware"
	"sprinthub/internal/permission"
	"sprinthub/internal/repository"
	"sprinthub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Println("✅ Migrations applied")

	// Setup Gin
	r := gin.Default()

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	sprintRepo := repository.NewSprintRepository(db)
	migrationRepo := repository.NewTaskMigrationRepository(db)

	// Permission resolution against the projects service; every check is a
	// fresh fetch
	resolver := permission.NewHTTPResolver(cfg.ProjectsServiceURL, cfg.PermissionTimeout)

	policy := permission.SkipForTrustedCaller
	if cfg.AuthPolicy == config.PolicyEnforce {
		policy = permission.Enforce
	}

	// Initialize service and handlers
	sprintService := service.NewSprintService(sprintRepo, migrationRepo, resolver, policy)
	sprintHandler := handler.NewSprintHandler(sprintService)
	migrationHandler := handler.NewMigrationHandler(sprintService)

	api := r.Group("/api/sprints")
	api.Use(middleware.ActingUser(cfg.ServiceSecret))
	{
		api.POST("", sprintHandler.Create)
		api.GET("", sprintHandler.GetAll)
		api.GET("/:id", sprintHandler.GetByID)
		api.PUT("/:id", sprintHandler.Update)
		api.DELETE("/:id", sprintHandler.SoftDelete)

		// Lifecycle transitions
		api.POST("/:id/start", sprintHandler.Start)
		api.POST("/:id/complete", sprintHandler.Complete)
		api.POST("/:id/archive", sprintHandler.Archive)
		api.PUT("/:id/cancel", sprintHandler.Cancel)
		api.PUT("/:id/soft-delete", sprintHandler.SoftDelete)
		api.PUT("/:id/restore", sprintHandler.Restore)

		// Project-scoped reads
		api.GET("/project/:projectId", sprintHandler.GetByProject)
		api.GET("/project/:projectId/active", sprintHandler.GetActiveByProject)
		api.GET("/project/:projectId/last", sprintHandler.GetLastByProject)
		api.GET("/project/:projectId/deleted", sprintHandler.GetDeletedByProject)
		api.GET("/project/:projectId/cancelled", sprintHandler.GetCancelledByProject)
		api.GET("/project/:projectId/calendar/statuses", sprintHandler.GetStatusesByProject)
		api.GET("/project/:projectId/calendar/filter", sprintHandler.FilterCalendar)

		// Task migration
		api.GET("/:id/incomplete-tasks", migrationHandler.GetIncompleteTasks)
		api.PUT("/:id/move-tasks-to-backlog", migrationHandler.MoveTasksToBacklog)
		api.PUT("/:id/move-tasks-to/:toSprintId", migrationHandler.MoveTasksToSprint)
		api.PUT("/move-specific-tasks-to-backlog", migrationHandler.MoveSpecificTasksToBacklog)
		api.PUT("/move-specific-tasks-to-sprint/:toSprintId", migrationHandler.MoveSpecificTasksToSprint)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func runMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
