package service

import (
	"context"
	"log/slog"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
)

// SubmissionGateway forwards built job configs to the job store. It holds no
// state; store errors are returned unchanged and never retried here.
type SubmissionGateway struct {
	store ports.JobStore
}

func NewSubmissionGateway(store ports.JobStore) *SubmissionGateway {
	return &SubmissionGateway{store: store}
}

// Enqueue returns created == false, with a nil error, when a non-terminal job
// already occupies scope.
func (g *SubmissionGateway) Enqueue(ctx context.Context, scope string, cfg domain.JobConfig) (int64, bool, error) {
	jobID, created, err := g.store.EnqueueJob(ctx, scope, cfg)
	if err != nil {
		return 0, false, err
	}

	if !created {
		slog.Info("job already queued for scope", "scope", scope, "config_type", cfg.ConfigType())
		return 0, false, nil
	}

	slog.Info("job enqueued", "scope", scope, "job_id", jobID, "config_type", cfg.ConfigType())
	return jobID, true, nil
}
