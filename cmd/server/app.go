package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/jsonfile"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
)

// application holds the fully wired dependencies of the server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	taskStore   store.TaskStore
	taskManager service.TaskManager

	// cleanup releases resources held by the storage backend.
	cleanup func()
}

// newApplication builds the storage backend selected by configuration
// and wires the task service on top of it.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		cleanup: func() {},
	}

	switch cfg.Storage.Backend {
	case config.BackendFile:
		taskStore, err := jsonfile.New(cfg.Storage.FilePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open task file: %w", err)
		}
		app.taskStore = taskStore

	case config.BackendPostgres:
		db, err := sql.Open("pgx", cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgres.RunMigrations(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.taskStore = postgres.NewTaskStore(db, logger)
		app.cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	app.taskManager = service.NewTaskService(app.taskStore, logger)

	return app, nil
}
