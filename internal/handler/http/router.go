package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/presensi-hq/presensi-backend-go/internal/handler/http/middleware"
	"github.com/presensi-hq/presensi-backend-go/internal/pkg/jwt"
)

func NewRouter(jwtService jwt.Service, punchHandler PunchHandler, scheduleHandler ScheduleHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "presensi-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/punches", func(r chi.Router) {
				r.Post("/", punchHandler.Punch)
				r.Get("/state", punchHandler.GetState)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", punchHandler.List)
					r.Post("/bulk", punchHandler.BulkCreate)
					r.Get("/state/{employeeID}", punchHandler.GetStateFor)
					r.Put("/{id}", punchHandler.Update)
					r.Delete("/{id}", punchHandler.Delete)
					r.Get("/{id}/edit-log", punchHandler.ListEditLog)
				})
			})

			r.Route("/work-days", func(r chi.Router) {
				r.Get("/my/{date}", punchHandler.GetMyWorkDay)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/{employeeID}/{date}", punchHandler.GetWorkDay)
					r.Post("/{employeeID}/{date}/recompute", punchHandler.RecomputeWorkDay)
				})
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", scheduleHandler.ListShifts)
				r.Get("/{id}", scheduleHandler.GetShift)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/", scheduleHandler.CreateShift)
					r.Put("/{id}", scheduleHandler.UpdateShift)
					r.Delete("/{id}", scheduleHandler.DeleteShift)
				})
			})

			r.Route("/schedule", func(r chi.Router) {
				r.Get("/week", scheduleHandler.GetWeek)

				// Manager only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/assignments", scheduleHandler.UpsertAssignment)
					r.Delete("/assignments/{id}", scheduleHandler.DeleteAssignment)
					r.Post("/week/copy", scheduleHandler.CopyWeek)

					r.Route("/templates", func(r chi.Router) {
						r.Post("/", scheduleHandler.CreateTemplate)
						r.Get("/", scheduleHandler.ListTemplates)
						r.Delete("/{id}", scheduleHandler.DeleteTemplate)
						r.Post("/{id}/apply", scheduleHandler.ApplyTemplate)
					})
				})
			})
		})
	})
	return r
}
