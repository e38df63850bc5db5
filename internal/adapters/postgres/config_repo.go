package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	tableConnections      = "connections"
	tableSources          = "sources"
	tableDestinations     = "destinations"
	tableActorDefinitions = "actor_definitions"
	tableOperations       = "operations"
)

// ConfigRepo reads connection configuration stored as JSONB documents.
type ConfigRepo struct {
	db *DB
}

func NewConfigRepo(db *DB) *ConfigRepo {
	return &ConfigRepo{db: db}
}

func (r *ConfigRepo) getDocument(ctx context.Context, table string, id uuid.UUID, out any) error {
	query := fmt.Sprintf(`SELECT document FROM %s WHERE id = $1`, table)

	var doc []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", table, id, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", table, id, err)
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", table, id, err)
	}
	return nil
}

func (r *ConfigRepo) GetConnection(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	var c domain.Connection
	if err := r.getDocument(ctx, tableConnections, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConfigRepo) GetSource(ctx context.Context, id uuid.UUID) (*domain.SourceConnection, error) {
	var s domain.SourceConnection
	if err := r.getDocument(ctx, tableSources, id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ConfigRepo) GetDestination(ctx context.Context, id uuid.UUID) (*domain.DestinationConnection, error) {
	var d domain.DestinationConnection
	if err := r.getDocument(ctx, tableDestinations, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ConfigRepo) GetSourceDefinition(ctx context.Context, id uuid.UUID) (*domain.ActorDefinition, error) {
	return r.getActorDefinition(ctx, id)
}

func (r *ConfigRepo) GetDestinationDefinition(ctx context.Context, id uuid.UUID) (*domain.ActorDefinition, error) {
	return r.getActorDefinition(ctx, id)
}

func (r *ConfigRepo) getActorDefinition(ctx context.Context, id uuid.UUID) (*domain.ActorDefinition, error) {
	var d domain.ActorDefinition
	if err := r.getDocument(ctx, tableActorDefinitions, id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListOperations returns the operations among ids in no particular order.
// Tombstoned operations are included; a connection that still references one
// keeps running it.
func (r *ConfigRepo) ListOperations(ctx context.Context, ids []uuid.UUID) ([]domain.Operation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query := `
		SELECT document FROM operations
		WHERE id = ANY($1::uuid[])
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(strIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ops := make([]domain.Operation, 0, len(ids))
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var op domain.Operation
		if err := json.Unmarshal(doc, &op); err != nil {
			return nil, fmt.Errorf("failed to decode operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ops, nil
}
