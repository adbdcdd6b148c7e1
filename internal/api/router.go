package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
	"github.com/hackgods/clinic-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Service  *scheduling.Service
	Checks   []Check
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer // serves /metrics when set
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger, cfg.Metrics))

	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	svc := cfg.Service

	r.Route("/doctors/{doctorID}/schedule", func(r chi.Router) {
		r.Get("/", listSchedulesHandler(svc))
		r.Get("/{date}", getScheduleHandler(svc))
		r.Put("/{date}", setAvailabilityHandler(svc))
		r.Post("/{date}/slots", addSlotsHandler(svc))
		r.Delete("/{date}/slots/{time}", removeSlotHandler(svc))
	})
	r.Get("/availability", availableSlotsHandler(svc))

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", requestAppointmentHandler(svc))
		r.Get("/", listAppointmentsHandler(svc))
		r.Get("/{id}", getAppointmentHandler(svc))
		r.Delete("/{id}", purgeAppointmentHandler(svc))
		r.Post("/{id}/accept", acceptAppointmentHandler(svc))
		r.Post("/{id}/decline", declineAppointmentHandler(svc))
		r.Post("/{id}/cancel", cancelAppointmentHandler(svc))
		r.Post("/{id}/reschedule", rescheduleAppointmentHandler(svc))
		r.Post("/{id}/outcome", recordOutcomeHandler(svc))
	})

	r.Route("/leaves", func(r chi.Router) {
		r.Post("/", fileLeaveHandler(svc))
		r.Get("/", listLeavesHandler(svc))
		r.Get("/{id}", getLeaveHandler(svc))
		r.Put("/{id}", updateLeaveHandler(svc))
		r.Delete("/{id}", withdrawLeaveHandler(svc))
		r.Post("/{id}/approve", approveLeaveHandler(svc))
		r.Post("/{id}/reject", rejectLeaveHandler(svc))
	})

	r.Post("/admin/persist", persistHandler(svc))
	r.Post("/admin/purge-expired-schedules", purgeSchedulesHandler(svc))

	return r
}
