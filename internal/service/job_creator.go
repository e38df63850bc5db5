package service

import (
	"context"
	"fmt"

	"github.com/alexchny/connection-jobs/internal/catalog"
	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/alexchny/connection-jobs/internal/resources"
)

type SyncJobRequest struct {
	Source           *domain.SourceConnection
	Destination      *domain.DestinationConnection
	Connection       *domain.Connection
	SourceImage      string
	DestinationImage string
	Operations       []domain.Operation

	// actor definition overrides, both optional
	SourceResourceRequirements      *domain.ActorDefinitionResourceRequirements
	DestinationResourceRequirements *domain.ActorDefinitionResourceRequirements
}

type ResetJobRequest struct {
	Destination      *domain.DestinationConnection
	Connection       *domain.Connection
	DestinationImage string
	Operations       []domain.Operation
	StreamsToReset   []domain.StreamDescriptor
}

// JobCreator builds sync and reset job configs for a connection and submits
// them under the connection's scope.
type JobCreator struct {
	gateway         *SubmissionGateway
	workerResources *domain.ResourceRequirements
}

func NewJobCreator(store ports.JobStore, workerResources *domain.ResourceRequirements) (*JobCreator, error) {
	if workerResources == nil {
		return nil, resources.ErrMissingWorkerDefault
	}
	return &JobCreator{
		gateway:         NewSubmissionGateway(store),
		workerResources: workerResources.Clone(),
	}, nil
}

func (c *JobCreator) CreateSyncJob(ctx context.Context, req SyncJobRequest) (int64, bool, error) {
	cfg, err := c.BuildSyncJobConfig(req)
	if err != nil {
		return 0, false, err
	}
	return c.gateway.Enqueue(ctx, req.Connection.Scope(), cfg)
}

func (c *JobCreator) CreateResetConnectionJob(ctx context.Context, req ResetJobRequest) (int64, bool, error) {
	cfg, err := c.BuildResetConnectionJobConfig(req)
	if err != nil {
		return 0, false, err
	}
	return c.gateway.Enqueue(ctx, req.Connection.Scope(), cfg)
}

func (c *JobCreator) BuildSyncJobConfig(req SyncJobRequest) (domain.JobConfig, error) {
	resolved, err := resources.Resolve(
		c.workerResources,
		req.Connection.ResourceRequirements,
		req.SourceResourceRequirements,
		req.DestinationResourceRequirements,
		domain.JobTypeSync,
	)
	if err != nil {
		return domain.JobConfig{}, fmt.Errorf("failed to resolve resource requirements for connection %s: %w", req.Connection.ID, err)
	}

	return domain.NewSyncJobConfig(domain.JobSyncConfig{
		NamespaceDefinition:             req.Connection.NamespaceDefinition,
		NamespaceFormat:                 req.Connection.NamespaceFormat,
		Prefix:                          req.Connection.Prefix,
		SourceConfiguration:             req.Source.Configuration,
		SourceDockerImage:               req.SourceImage,
		DestinationConfiguration:        req.Destination.Configuration,
		DestinationDockerImage:          req.DestinationImage,
		ConfiguredAirbyteCatalog:        req.Connection.Catalog,
		OperationSequence:               req.Operations,
		ResourceRequirements:            resolved.Overall,
		SourceResourceRequirements:      resolved.Source,
		DestinationResourceRequirements: resolved.Destination,
	}), nil
}

// BuildResetConnectionJobConfig always uses the worker default envelope. The
// connection override does not apply to resets.
func (c *JobCreator) BuildResetConnectionJobConfig(req ResetJobRequest) (domain.JobConfig, error) {
	overall, err := resources.Overall(c.workerResources, nil)
	if err != nil {
		return domain.JobConfig{}, err
	}

	return domain.NewResetConnectionJobConfig(domain.JobResetConnectionConfig{
		NamespaceDefinition:      req.Connection.NamespaceDefinition,
		NamespaceFormat:          req.Connection.NamespaceFormat,
		Prefix:                   req.Connection.Prefix,
		DestinationConfiguration: req.Destination.Configuration,
		DestinationDockerImage:   req.DestinationImage,
		ConfiguredAirbyteCatalog: catalog.ForReset(req.Connection.Catalog),
		OperationSequence:        req.Operations,
		ResourceRequirements:     overall,
		ResetSourceConfiguration: domain.ResetSourceConfiguration{
			StreamsToReset: req.StreamsToReset,
		},
	}), nil
}
