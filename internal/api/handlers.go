package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LeventeLantos/recurring-payments/internal/cache"
	"github.com/LeventeLantos/recurring-payments/internal/logger"
	"github.com/LeventeLantos/recurring-payments/internal/model"
	"github.com/LeventeLantos/recurring-payments/internal/scheduled"
	"github.com/LeventeLantos/recurring-payments/internal/scheduler"
)

// Service is the scheduled transaction surface the HTTP layer calls.
type Service interface {
	Create(ctx context.Context, d model.Draft) (model.ScheduledTransaction, error)
	List() []model.ScheduledTransaction
	ListActive() []model.ScheduledTransaction
	Get(id string) (model.ScheduledTransaction, error)
	Update(ctx context.Context, id string, p model.Patch) (model.ScheduledTransaction, error)
	Delete(ctx context.Context, id string) (bool, error)
	Upcoming(horizonDays int) []model.ScheduledTransaction
	History(id string) []model.TransactionExecution
	RunDue(ctx context.Context) []model.TransactionExecution
	Stats() scheduled.Stats
}

// StatusChecker looks up the provider's current state of a submitted payment.
type StatusChecker interface {
	TransferStatus(ctx context.Context, referenceID string) (model.PaymentStatus, error)
}

const defaultStatusTimeout = 10 * time.Second

type Handler struct {
	sched       *scheduler.Scheduler
	svc         Service
	horizonDays int
	receipts    cache.ReceiptCache

	payments      StatusChecker
	statusTimeout time.Duration
}

func NewHandler(s *scheduler.Scheduler, svc Service, horizonDays int) *Handler {
	if horizonDays <= 0 {
		horizonDays = scheduled.DefaultHorizonDays
	}
	return &Handler{sched: s, svc: svc, horizonDays: horizonDays}
}

// WithReceipts enables GET /v1/receipts/{executionId}.
func (h *Handler) WithReceipts(c cache.ReceiptCache) *Handler {
	h.receipts = c
	return h
}

// WithStatusChecker enables GET /v1/payments/{referenceId}/status. Each
// lookup is bounded by timeout.
func (h *Handler) WithStatusChecker(c StatusChecker, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultStatusTimeout
	}
	h.payments = c
	h.statusTimeout = timeout
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	st := h.sched.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"running":   st.Running,
		"scheduler": st,
		"stats":     h.svc.Stats(),
	})
}

func (h *Handler) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

// SchedulerRun executes one tick now, independent of the ticker.
func (h *Handler) SchedulerRun(w http.ResponseWriter, r *http.Request) {
	execs := h.svc.RunDue(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"executions": execs, "count": len(execs)})
}

func (h *Handler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	var items []model.ScheduledTransaction
	if parseBool(r.URL.Query().Get("active"), false) {
		items = h.svc.ListActive()
	} else {
		items = h.svc.List()
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) CreateScheduled(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := decodeBody(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.svc.Create(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *Handler) GetScheduled(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) UpdateScheduled(w http.ResponseWriter, r *http.Request) {
	var p model.Patch
	if err := decodeBody(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) DeleteScheduled(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": ok})
}

func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days := parseInt(r.URL.Query().Get("days"), h.horizonDays)
	if days <= 0 {
		days = h.horizonDays
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": h.svc.Upcoming(days), "days": days})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{"items": h.svc.History(id)})
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	if h.receipts == nil {
		writeError(w, http.StatusServiceUnavailable, "receipt cache disabled")
		return
	}

	rc, err := h.receipts.GetReceipt(r.Context(), chi.URLParam(r, "executionId"))
	if errors.Is(err, cache.ErrReceiptNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

// PaymentStatus reports where the provider stands on a reference. The stored
// execution record is not touched.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	if h.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "payment status lookup disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.statusTimeout)
	defer cancel()

	st, err := h.payments.TransferStatus(ctx, chi.URLParam(r, "referenceId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrUnknownReference):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream timed out")
		writeError(w, http.StatusGatewayTimeout, "payment provider timed out")
	case errors.Is(err, model.ErrPayment):
		log := logger.FromContext(r.Context())
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("payment provider error")
		writeError(w, http.StatusBadGateway, "payment provider error")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody rejects unknown fields so id, createdAt and executionHistory
// cannot be smuggled into a create or update.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func parseInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func parseBool(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
