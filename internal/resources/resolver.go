// Package resources resolves the CPU and memory envelope of a job from the
// worker default, the connection override and the per-actor definition
// overrides.
//
// The connection override competes only with the worker default for the
// overall envelope. Actor overrides are resolved independently per side and
// fall back to the resolved overall value, never to the worker default
// directly.
package resources

import (
	"errors"
	"fmt"

	"github.com/alexchny/connection-jobs/internal/domain"
)

// ErrMissingWorkerDefault means the worker has no default envelope configured.
var ErrMissingWorkerDefault = errors.New("worker default resource requirements are not configured")

// ErrDuplicateJobType means an actor override lists the same job type twice.
var ErrDuplicateJobType = errors.New("duplicate job type in actor definition resource requirements")

// Resolved holds the overall envelope and the per-actor envelopes of a job.
type Resolved struct {
	Overall     *domain.ResourceRequirements
	Source      *domain.ResourceRequirements
	Destination *domain.ResourceRequirements
}

// Resolve returns copies; nothing in the result aliases the inputs.
func Resolve(
	workerDefault *domain.ResourceRequirements,
	connectionOverride *domain.ResourceRequirements,
	source *domain.ActorDefinitionResourceRequirements,
	destination *domain.ActorDefinitionResourceRequirements,
	jobType domain.JobType,
) (Resolved, error) {
	overall, err := Overall(workerDefault, connectionOverride)
	if err != nil {
		return Resolved{}, err
	}

	sourceReqs, err := ActorOverride(source, jobType)
	if err != nil {
		return Resolved{}, fmt.Errorf("source: %w", err)
	}
	destReqs, err := ActorOverride(destination, jobType)
	if err != nil {
		return Resolved{}, fmt.Errorf("destination: %w", err)
	}

	if sourceReqs == nil {
		sourceReqs = overall.Clone()
	}
	if destReqs == nil {
		destReqs = overall.Clone()
	}

	return Resolved{
		Overall:     overall,
		Source:      sourceReqs,
		Destination: destReqs,
	}, nil
}

func Overall(workerDefault, connectionOverride *domain.ResourceRequirements) (*domain.ResourceRequirements, error) {
	if workerDefault == nil {
		return nil, ErrMissingWorkerDefault
	}
	if connectionOverride != nil {
		return connectionOverride.Clone(), nil
	}
	return workerDefault.Clone(), nil
}

// ActorOverride picks the job-type-specific entry, then the actor default.
// A nil result means the actor does not refine the envelope.
func ActorOverride(reqs *domain.ActorDefinitionResourceRequirements, jobType domain.JobType) (*domain.ResourceRequirements, error) {
	if reqs == nil {
		return nil, nil
	}
	if err := Validate(reqs); err != nil {
		return nil, err
	}

	for _, limit := range reqs.JobSpecific {
		if limit.JobType == jobType {
			r := limit.ResourceRequirements
			return &r, nil
		}
	}

	return reqs.Default.Clone(), nil
}

// Validate rejects override lists naming the same job type twice.
func Validate(reqs *domain.ActorDefinitionResourceRequirements) error {
	if reqs == nil {
		return nil
	}
	seen := make(map[domain.JobType]struct{}, len(reqs.JobSpecific))
	for _, limit := range reqs.JobSpecific {
		if _, ok := seen[limit.JobType]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateJobType, limit.JobType)
		}
		seen[limit.JobType] = struct{}{}
	}
	return nil
}
