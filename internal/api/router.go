package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/LeventeLantos/recurring-payments/internal/logger"
)

func Router(h *Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/v1/health", h.Health)

	r.Route("/v1/scheduler", func(r chi.Router) {
		r.Get("/status", h.SchedulerStatus)
		r.Post("/start", h.SchedulerStart)
		r.Post("/stop", h.SchedulerStop)
		r.Post("/run", h.SchedulerRun)
	})

	r.Route("/v1/scheduled", func(r chi.Router) {
		r.Get("/", h.ListScheduled)
		r.Post("/", h.CreateScheduled)
		r.Get("/upcoming", h.Upcoming)
		r.Get("/history", h.History)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetScheduled)
			r.Patch("/", h.UpdateScheduled)
			r.Delete("/", h.DeleteScheduled)
			r.Get("/history", h.History)
		})
	})

	r.Get("/v1/receipts/{executionId}", h.Receipt)
	r.Get("/v1/payments/{referenceId}/status", h.PaymentStatus)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("recurring-payments"))
	})

	return r
}

// requestLogger stores a request-scoped logger in the context and writes one
// structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			r = r.WithContext(logger.WithContext(r.Context(), reqLog))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
