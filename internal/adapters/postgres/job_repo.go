package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

// EnqueueJob inserts a pending job unless the scope already has a
// non-terminal one. The check and the insert are one statement guarded by
// jobs_scope_non_terminal_idx, so concurrent callers cannot both win.
func (r *JobRepo) EnqueueJob(ctx context.Context, scope string, cfg domain.JobConfig) (int64, bool, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to marshal job config: %w", err)
	}

	query := `
		INSERT INTO jobs (scope, config_type, config, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT DO NOTHING
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		scope,
		string(cfg.ConfigType()),
		string(payload),
		string(domain.JobStatusPending),
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to enqueue job for scope %s: %w", scope, err)
	}

	return id, true, nil
}

func (r *JobRepo) SetStatus(ctx context.Context, jobID int64, status domain.JobStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid job status %q", status)
	}

	query := `
		UPDATE jobs
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, string(status), jobID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("job %d cannot be reopened: %w", jobID, ports.ErrScopeOccupied)
		}
		return fmt.Errorf("failed to update job %d: %w", jobID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %d: %w", jobID, ports.ErrNotFound)
	}
	return nil
}
