package redis

import (
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/alexchny/connection-jobs/internal/domain"
)

const testQueue = "jobs:queue"

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	db, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	client, err := NewClient(db.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, db
}

func syncConfig() domain.JobConfig {
	return domain.NewSyncJobConfig(domain.JobSyncConfig{
		SourceDockerImage:      "airbyte/source-postgres:0.4.1",
		DestinationDockerImage: "airbyte/destination-redshift:0.3.30",
		SourceConfiguration:    json.RawMessage(`{"host":"db"}`),
		ResourceRequirements:   &domain.ResourceRequirements{CPURequest: "0.2", MemoryRequest: "200Mi"},
	})
}
