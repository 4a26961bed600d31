package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/taskhub/internal/api"
	apiMiddleware "github.com/phrazzld/taskhub/internal/api/middleware"
)

// setupRouter registers the middleware chain and every route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, &app.config.Auth, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	projectHandler := api.NewProjectHandler(app.projectService, app.userService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.userService, app.logger)
	reportHandler := api.NewReportHandler(app.reportService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.ListUsers)
				r.Post("/", userHandler.CreateUser)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.ListProjects)
				r.Post("/", projectHandler.CreateProject)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projectHandler.GetProject)
					r.Put("/", projectHandler.UpdateProject)
					r.Delete("/", projectHandler.DeleteProject)

					r.Post("/members", projectHandler.AddMember)
					r.Put("/members/{user_id}", projectHandler.UpdateMember)
					r.Delete("/members/{user_id}", projectHandler.RemoveMember)

					r.Post("/modules", projectHandler.AddModule)
					r.Put("/modules/{module_id}", projectHandler.UpdateModule)
					r.Delete("/modules/{module_id}", projectHandler.DeleteModule)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/workload", reportHandler.Workload)
				r.Get("/timeline", reportHandler.Timeline)
				r.Get("/summary", reportHandler.Summary)
				r.Get("/tasks.csv", reportHandler.ExportCSV)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
