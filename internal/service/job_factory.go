package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/google/uuid"
)

var (
	ErrConnectionInactive = errors.New("connection cannot run jobs")
	ErrOperationNotFound  = errors.New("operation not found")
)

// SyncJobFactory loads everything a job needs from the config repository and
// hands it to the JobCreator.
type SyncJobFactory struct {
	configRepo ports.ConfigRepository
	creator    *JobCreator
}

func NewSyncJobFactory(r ports.ConfigRepository, c *JobCreator) *SyncJobFactory {
	return &SyncJobFactory{
		configRepo: r,
		creator:    c,
	}
}

func (f *SyncJobFactory) Sync(ctx context.Context, connectionID uuid.UUID) (int64, bool, error) {
	conn, err := f.loadConnection(ctx, connectionID)
	if err != nil {
		return 0, false, err
	}

	source, err := f.configRepo.GetSource(ctx, conn.SourceID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load source %s: %w", conn.SourceID, err)
	}
	sourceDef, err := f.configRepo.GetSourceDefinition(ctx, source.SourceDefinitionID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load source definition %s: %w", source.SourceDefinitionID, err)
	}

	dest, destDef, err := f.loadDestination(ctx, conn.DestinationID)
	if err != nil {
		return 0, false, err
	}

	ops, err := f.loadOperations(ctx, conn.OperationIDs)
	if err != nil {
		return 0, false, err
	}

	return f.creator.CreateSyncJob(ctx, SyncJobRequest{
		Source:                          source,
		Destination:                     dest,
		Connection:                      conn,
		SourceImage:                     sourceDef.Image(),
		DestinationImage:                destDef.Image(),
		Operations:                      ops,
		SourceResourceRequirements:      sourceDef.ResourceRequirements,
		DestinationResourceRequirements: destDef.ResourceRequirements,
	})
}

// Reset clears the given streams, or every stream of the catalog when streams
// is empty.
func (f *SyncJobFactory) Reset(ctx context.Context, connectionID uuid.UUID, streams []domain.StreamDescriptor) (int64, bool, error) {
	conn, err := f.loadConnection(ctx, connectionID)
	if err != nil {
		return 0, false, err
	}

	dest, destDef, err := f.loadDestination(ctx, conn.DestinationID)
	if err != nil {
		return 0, false, err
	}

	ops, err := f.loadOperations(ctx, conn.OperationIDs)
	if err != nil {
		return 0, false, err
	}

	if len(streams) == 0 {
		streams = conn.Catalog.Descriptors()
		slog.Debug("resetting all streams", "connection_id", connectionID, "streams", len(streams))
	}

	return f.creator.CreateResetConnectionJob(ctx, ResetJobRequest{
		Destination:      dest,
		Connection:       conn,
		DestinationImage: destDef.Image(),
		Operations:       ops,
		StreamsToReset:   streams,
	})
}

func (f *SyncJobFactory) loadConnection(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	conn, err := f.configRepo.GetConnection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection %s: %w", id, err)
	}
	if !conn.CanSync() {
		return nil, fmt.Errorf("connection %s is in status '%s': %w", id, conn.Status, ErrConnectionInactive)
	}
	return conn, nil
}

func (f *SyncJobFactory) loadDestination(ctx context.Context, id uuid.UUID) (*domain.DestinationConnection, *domain.ActorDefinition, error) {
	dest, err := f.configRepo.GetDestination(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load destination %s: %w", id, err)
	}
	def, err := f.configRepo.GetDestinationDefinition(ctx, dest.DestinationDefinitionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load destination definition %s: %w", dest.DestinationDefinitionID, err)
	}
	return dest, def, nil
}

// loadOperations returns operations in the connection's declared order.
func (f *SyncJobFactory) loadOperations(ctx context.Context, ids []uuid.UUID) ([]domain.Operation, error) {
	if len(ids) == 0 {
		return []domain.Operation{}, nil
	}

	found, err := f.configRepo.ListOperations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Operation, len(found))
	for _, op := range found {
		byID[op.OperationID] = op
	}

	ops := make([]domain.Operation, 0, len(ids))
	for _, id := range ids {
		op, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("operation %s: %w", id, ErrOperationNotFound)
		}
		ops = append(ops, op)
	}
	return ops, nil
}
