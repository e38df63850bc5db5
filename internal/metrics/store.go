package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
)

const MetricPrefix = "connection_jobs_"

const (
	OutcomeCreated      = "created"
	OutcomeDeduplicated = "deduplicated"
	OutcomeError        = "error"
)

var enqueueCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: MetricPrefix + "enqueue_total",
		Help: "Number of job submissions by config type and outcome",
	},
	[]string{"config_type", "outcome"},
)

var enqueueLatencyHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    MetricPrefix + "enqueue_duration_seconds",
		Help:    "Time taken by the job store to accept or reject a submission",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	},
	[]string{"config_type"},
)

// InstrumentedStore records the outcome of every submission made through the
// wrapped store.
type InstrumentedStore struct {
	next ports.JobStore
}

func NewInstrumentedStore(next ports.JobStore) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) EnqueueJob(ctx context.Context, scope string, cfg domain.JobConfig) (int64, bool, error) {
	configType := string(cfg.ConfigType())
	start := time.Now()

	id, created, err := s.next.EnqueueJob(ctx, scope, cfg)

	enqueueLatencyHist.WithLabelValues(configType).Observe(time.Since(start).Seconds())
	enqueueCounter.WithLabelValues(configType, outcome(created, err)).Inc()

	return id, created, err
}

func outcome(created bool, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case created:
		return OutcomeCreated
	default:
		return OutcomeDeduplicated
	}
}
