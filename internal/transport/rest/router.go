package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/timeclock/internal/auth"
	"github.com/frahmantamala/timeclock/internal/autoclockout"
	"github.com/frahmantamala/timeclock/internal/correction"
	"github.com/frahmantamala/timeclock/internal/employee"
	"github.com/frahmantamala/timeclock/internal/report"
	"github.com/frahmantamala/timeclock/internal/timeentry"
	"github.com/frahmantamala/timeclock/internal/transport/middleware"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	employeeHandler *employee.Handler,
	timeEntryHandler *timeentry.Handler,
	correctionHandler *correction.Handler,
	autoClockOutHandler *autoclockout.Handler,
	reportHandler *report.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/auth/login", authHandler.Login)

		// authenticated routes
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/time-entries", func(tr chi.Router) {
				tr.Post("/clock-in", timeEntryHandler.ClockIn)
				tr.Post("/clock-out", timeEntryHandler.ClockOut)
				tr.Get("/status", timeEntryHandler.Status)
				tr.Get("/", timeEntryHandler.ListEntries)
			})

			pr.Get("/reports/employees/{id}", reportHandler.GetReport)

			// admin routes
			pr.Group(func(ar chi.Router) {
				ar.Use(authHandler.RequireAdmin)

				ar.Route("/employees", func(er chi.Router) {
					er.Post("/", employeeHandler.CreateEmployee)
					er.Get("/", employeeHandler.ListEmployees)
					er.Get("/{id}", employeeHandler.GetEmployee)
					er.Patch("/{id}", employeeHandler.UpdateEmployee)
					er.Delete("/{id}", employeeHandler.DeleteEmployee)
				})

				ar.Route("/corrections", func(cr chi.Router) {
					cr.Get("/review", correctionHandler.Review)
					cr.Patch("/entries/{id}", correctionHandler.CorrectEntry)
					cr.Post("/batch", correctionHandler.BatchCorrect)
				})

				ar.Route("/auto-clockout", func(acr chi.Router) {
					acr.Get("/open", autoClockOutHandler.ListOpen)
					acr.Post("/run", autoClockOutHandler.Run)
					acr.Post("/selective", autoClockOutHandler.RunSelective)
					acr.Post("/enforce-now", autoClockOutHandler.EnforceNow)
				})
			})
		})
	})
}
