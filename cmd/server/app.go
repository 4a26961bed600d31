package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskhub/internal/config"
	"github.com/phrazzld/taskhub/internal/platform/postgres"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/service/auth"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService     auth.JWTService
	userService    service.UserService
	projectService service.ProjectService
	taskService    service.TaskService
	reportService  service.ReportService
}

// newApplication builds the Postgres stores and the services over them.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create jwt service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	projectStore := postgres.NewPostgresProjectStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)

	return &application{
		config:     cfg,
		logger:     logger,
		db:         db,
		jwtService: jwtService,
		userService: service.NewUserService(
			userStore, auth.NewBcryptVerifier(), db, cfg.Auth.BootstrapAdminEmail, logger),
		projectService: service.NewProjectService(projectStore, userStore, db, logger),
		taskService:    service.NewTaskService(taskStore, projectStore, userStore, time.Now, logger),
		reportService:  service.NewReportService(userStore, projectStore, taskStore, time.Now, logger),
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down within the
// configured timeout and closes the database.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	case serveErr = <-errCh:
		if serveErr != nil {
			app.logger.Error("server failed", slog.String("error", serveErr.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		serveErr = errors.Join(serveErr, fmt.Errorf("server shutdown failed: %w", err))
	}

	app.cleanup()
	app.logger.Info("server shutdown completed")
	return serveErr
}

func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}
