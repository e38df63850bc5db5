package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/alexchny/connection-jobs/internal/service"
	"github.com/google/uuid"
)

type JobFactory interface {
	Sync(ctx context.Context, connectionID uuid.UUID) (int64, bool, error)
	Reset(ctx context.Context, connectionID uuid.UUID, streams []domain.StreamDescriptor) (int64, bool, error)
}

type ConnectionHandler struct {
	factory        JobFactory
	limiter        ports.RateLimiter
	enqueueTimeout time.Duration
}

func NewConnectionHandler(f JobFactory, l ports.RateLimiter, enqueueTimeout time.Duration) *ConnectionHandler {
	return &ConnectionHandler{
		factory:        f,
		limiter:        l,
		enqueueTimeout: enqueueTimeout,
	}
}

func (h *ConnectionHandler) SyncConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ConnectionID string `json:"connectionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	connID, ok := parseConnectionID(w, req.ConnectionID)
	if !ok || !h.allow(w, r, connID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.enqueueTimeout)
	defer cancel()

	jobID, created, err := h.factory.Sync(ctx, connID)
	h.respond(w, connID, domain.ConfigTypeSync, jobID, created, err)
}

func (h *ConnectionHandler) ResetConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ConnectionID string                    `json:"connectionId"`
		Streams      []domain.StreamDescriptor `json:"streams"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	for _, s := range req.Streams {
		if s.Name == "" {
			http.Error(w, "stream name is required", http.StatusBadRequest)
			return
		}
	}

	connID, ok := parseConnectionID(w, req.ConnectionID)
	if !ok || !h.allow(w, r, connID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.enqueueTimeout)
	defer cancel()

	jobID, created, err := h.factory.Reset(ctx, connID, req.Streams)
	h.respond(w, connID, domain.ConfigTypeResetConnection, jobID, created, err)
}

func parseConnectionID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	if raw == "" {
		http.Error(w, "connectionId is required", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "connectionId must be a uuid", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// allow lets the request through when the limiter itself fails.
func (h *ConnectionHandler) allow(w http.ResponseWriter, r *http.Request, connID uuid.UUID) bool {
	if h.limiter == nil {
		return true
	}

	allowed, wait, err := h.limiter.Allow(r.Context(), "submission:"+connID.String())
	if err != nil {
		slog.Warn("rate limiter unavailable", "connection_id", connID, "error", err)
		return true
	}
	if allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	http.Error(w, "too many submissions for this connection", http.StatusTooManyRequests)
	return false
}

func (h *ConnectionHandler) respond(w http.ResponseWriter, connID uuid.UUID, configType domain.ConfigType, jobID int64, created bool, err error) {
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOperationNotFound):
			slog.Warn("connection references a missing operation", "connection_id", connID, "error", err)
			http.Error(w, "connection references an operation that does not exist", http.StatusUnprocessableEntity)
		case errors.Is(err, ports.ErrNotFound):
			slog.Info("job submission for unknown entity", "connection_id", connID, "error", err)
			http.Error(w, "connection not found", http.StatusNotFound)
		case errors.Is(err, service.ErrConnectionInactive):
			slog.Info("job submission for inactive connection", "connection_id", connID)
			http.Error(w, "connection cannot run jobs", http.StatusConflict)
		default:
			slog.Error("failed to submit job", "connection_id", connID, "config_type", configType, "error", err)
			http.Error(w, "failed to submit job", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if !created {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "already_queued",
		})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jobId":  jobID,
		"status": "queued",
	})
}
