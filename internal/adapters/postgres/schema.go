package postgres

import (
	"context"
	"fmt"
)

// The partial unique index is what makes enqueue atomic: a second insert for
// a scope that still has a pending, running or incomplete job conflicts.
const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          BIGSERIAL PRIMARY KEY,
	scope       TEXT        NOT NULL,
	config_type TEXT        NOT NULL,
	config      JSON        NOT NULL,
	status      TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS jobs_scope_non_terminal_idx
	ON jobs (scope)
	WHERE status IN ('pending', 'running', 'incomplete');

CREATE TABLE IF NOT EXISTS connections (
	id       UUID PRIMARY KEY,
	document JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS sources (
	id       UUID PRIMARY KEY,
	document JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS destinations (
	id       UUID PRIMARY KEY,
	document JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS actor_definitions (
	id       UUID PRIMARY KEY,
	document JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS operations (
	id       UUID PRIMARY KEY,
	document JSONB NOT NULL
);
`

func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
