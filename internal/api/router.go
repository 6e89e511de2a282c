package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/healsync/healsync-backend/internal/appointment"
	"github.com/healsync/healsync-backend/internal/metrics"
	"github.com/healsync/healsync-backend/internal/prescription"
	"github.com/healsync/healsync-backend/internal/report"
)

type RouterConfig struct {
	Scheduler     *appointment.Scheduler
	Lifecycle     *appointment.Lifecycle
	Reports       *report.Service
	Prescriptions *prescription.Service
	PgPool        *pgxpool.Pool
	Redis         *redis.Client
	Logger        zerolog.Logger
	JWTSecret     string
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(Authenticator(cfg.JWTSecret))
		} else {
			cfg.Logger.Warn().Msg("JWT_SECRET not set, API authentication disabled")
		}

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/book", bookAppointmentHandler(cfg.Scheduler))
			r.Get("/{id}", getAppointmentHandler(cfg.Scheduler))
			r.Get("/doctor/{accountId}", listDoctorAppointmentsHandler(cfg.Scheduler))
			r.Get("/patient/{accountId}", listPatientAppointmentsHandler(cfg.Scheduler))
			r.Put("/{id}/cancel", cancelAppointmentHandler(cfg.Lifecycle))

			doctorOnly := r
			if cfg.JWTSecret != "" {
				doctorOnly = r.With(RequireRole(RoleDoctor, RoleAdmin))
			}
			doctorOnly.Put("/{id}/status", updateStatusHandler(cfg.Lifecycle))
			doctorOnly.Put("/{id}/notes", doctorNotesHandler(cfg.Lifecycle))
		})

		r.Route("/medical-reports", func(r chi.Router) {
			create := r
			if cfg.JWTSecret != "" {
				create = r.With(RequireRole(RoleDoctor, RoleAdmin))
			}
			create.Post("/", createReportHandler(cfg.Reports))
			r.Get("/patient/{accountId}", listPatientReportsHandler(cfg.Reports))
		})

		r.Route("/prescriptions", func(r chi.Router) {
			create := r
			if cfg.JWTSecret != "" {
				create = r.With(RequireRole(RoleDoctor, RoleAdmin))
			}
			create.Post("/", createPrescriptionHandler(cfg.Prescriptions))
			r.Get("/patient/{accountId}", listPatientPrescriptionsHandler(cfg.Prescriptions))
		})
	})

	return r
}
