package ports

import (
	"context"
	"errors"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type ConfigRepository interface {
	GetConnection(ctx context.Context, id uuid.UUID) (*domain.Connection, error)
	GetSource(ctx context.Context, id uuid.UUID) (*domain.SourceConnection, error)
	GetDestination(ctx context.Context, id uuid.UUID) (*domain.DestinationConnection, error)
	GetSourceDefinition(ctx context.Context, id uuid.UUID) (*domain.ActorDefinition, error)
	GetDestinationDefinition(ctx context.Context, id uuid.UUID) (*domain.ActorDefinition, error)
	ListOperations(ctx context.Context, ids []uuid.UUID) ([]domain.Operation, error)
}
