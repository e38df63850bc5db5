package ports

import (
	"context"
	"errors"

	"github.com/alexchny/connection-jobs/internal/domain"
)

// ErrScopeOccupied is returned by SetStatus when a job would become
// non-terminal while another job holds its scope.
var ErrScopeOccupied = errors.New("scope already has a non-terminal job")

// JobStore persists jobs keyed by scope. EnqueueJob must be atomic: of two
// concurrent calls for the same scope at most one may create a job, the other
// reports created == false with a nil error.
type JobStore interface {
	EnqueueJob(ctx context.Context, scope string, cfg domain.JobConfig) (jobID int64, created bool, err error)
}

// JobStatusWriter is the execution engine's side of the store; moving a job
// to a terminal status frees its scope.
type JobStatusWriter interface {
	SetStatus(ctx context.Context, jobID int64, status domain.JobStatus) error
}
