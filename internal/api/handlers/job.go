package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
)

// JobHandler is the execution engine's callback surface. Reporting a terminal
// status frees the job's connection for the next submission.
type JobHandler struct {
	statusWriter ports.JobStatusWriter
}

func NewJobHandler(w ports.JobStatusWriter) *JobHandler {
	return &JobHandler{statusWriter: w}
}

// UpdateStatus serves POST /api/v1/jobs/{id}/status.
func (h *JobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || jobID < 1 {
		http.Error(w, "job id must be a positive integer", http.StatusBadRequest)
		return
	}

	var req struct {
		Status domain.JobStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !req.Status.IsValid() {
		http.Error(w, "unknown job status", http.StatusBadRequest)
		return
	}

	if err := h.statusWriter.SetStatus(r.Context(), jobID, req.Status); err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			http.Error(w, "job not found", http.StatusNotFound)
		case errors.Is(err, ports.ErrScopeOccupied):
			slog.Info("job reopen rejected", "job_id", jobID, "status", req.Status)
			http.Error(w, "another job is already queued for this connection", http.StatusConflict)
		default:
			slog.Error("failed to update job status", "job_id", jobID, "status", req.Status, "error", err)
			http.Error(w, "failed to update job status", http.StatusInternalServerError)
		}
		return
	}

	slog.Info("job status updated", "job_id", jobID, "status", req.Status, "terminal", req.Status.IsTerminal())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jobId":  jobID,
		"status": req.Status,
	})
}
