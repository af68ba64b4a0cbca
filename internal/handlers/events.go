package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/metrics"
	"github.com/pulsemetrics/collector/internal/middleware"
	"github.com/pulsemetrics/collector/internal/models"
	"github.com/pulsemetrics/collector/internal/pending"
	"github.com/pulsemetrics/collector/internal/queue"
	"github.com/pulsemetrics/collector/internal/ratelimit"
)

// StatusResponse is the body of every accepted ingress call. Both
// outcomes are acceptance; they differ only in the delivery path the
// event took.
type StatusResponse struct {
	Status string `json:"status"`
}

const (
	// StatusCreated means the event was admitted to the live queue.
	StatusCreated = "created"
	// StatusPending means the queue rejected the event and it was
	// durably persisted for replay instead.
	StatusPending = "pending"
)

type EventHandler struct {
	queue   *queue.Queue
	store   pending.Store
	limiter ratelimit.RateLimiter
}

func NewEventHandler(q *queue.Queue, store pending.Store, limiter ratelimit.RateLimiter) *EventHandler {
	if limiter == nil {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	return &EventHandler{
		queue:   q,
		store:   store,
		limiter: limiter,
	}
}

// HandleEvent accepts one analytics event. Identity fields come from
// the authenticated request; only payload fields are read from the body.
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	meta := requestMeta(r)

	allowed, err := h.limiter.Allow(r.Context(), rateLimitKey(meta, r))
	if err != nil {
		// Fail open: a broken limiter must not drop traffic.
		slog.Warn("rate limiter unavailable", logging.Error(err))
	} else if !allowed {
		h.sendError(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	var payload models.EventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if payload.Page == "" || payload.Event == "" {
		h.sendError(w, "page and event are required", http.StatusBadRequest)
		return
	}

	event := models.NewEvent(&payload, meta)

	if h.queue.TryEnqueue(event) {
		metrics.EventsAccepted.WithLabelValues(StatusCreated).Inc()
		h.sendStatus(w, StatusCreated)
		return
	}

	// Queue full or shutting down: persist synchronously so acceptance
	// still holds, just on the durable path.
	if err := h.store.InsertBatch(r.Context(), []*models.Event{event}); err != nil {
		slog.Error("overflow fallback insert failed",
			slog.String(logging.FieldPage, event.Page),
			slog.String(logging.FieldEvent, event.Event),
			logging.Error(err),
		)
		h.sendError(w, "failed to persist event", http.StatusInternalServerError)
		return
	}

	metrics.EventsAccepted.WithLabelValues(StatusPending).Inc()
	h.sendStatus(w, StatusPending)
}

// Ping is the liveness probe.
func (h *EventHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("pong"))
}

func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

func (h *EventHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ready",
		"queue_depth":    h.queue.Len(),
		"queue_capacity": h.queue.Cap(),
	})
}

func (h *EventHandler) sendStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(StatusResponse{Status: status})
}

func (h *EventHandler) sendError(w http.ResponseWriter, message string, httpStatus int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func requestMeta(r *http.Request) *models.RequestMeta {
	return &models.RequestMeta{
		UserID:     middleware.GetUserID(r.Context()),
		DeviceUUID: r.Header.Get("X-Device-UUID"),
		AppVersion: r.Header.Get("X-App-Version"),
		OSVersion:  r.Header.Get("X-OS-Version"),
		UserAgent:  r.UserAgent(),
	}
}

func rateLimitKey(meta *models.RequestMeta, r *http.Request) string {
	if meta.DeviceUUID != "" {
		return meta.DeviceUUID
	}
	if meta.UserID != "" {
		return meta.UserID
	}
	return r.RemoteAddr
}
