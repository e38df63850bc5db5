package redis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
)

func TestEnqueueCreatesJob(t *testing.T) {
	client, db := newTestClient(t)
	store := NewJobStore(client, testQueue)

	id, created, err := store.EnqueueJob(context.Background(), "conn-1", syncConfig())
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, int64(1), id)

	slot, err := db.Get("jobs:scope:conn-1")
	require.NoError(t, err)
	assert.Equal(t, "1", slot)

	queued, err := db.List(testQueue)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, queued)

	assert.Equal(t, "pending", db.HGet("jobs:job:1", "status"))
	assert.Equal(t, "conn-1", db.HGet("jobs:job:1", "scope"))
	assert.Equal(t, "sync", db.HGet("jobs:job:1", "config_type"))

	var stored domain.JobConfig
	require.NoError(t, json.Unmarshal([]byte(db.HGet("jobs:job:1", "config")), &stored))
	got, ok := stored.Sync()
	require.True(t, ok)
	assert.JSONEq(t, `{"host":"db"}`, string(got.SourceConfiguration))
}

func TestEnqueueDeduplicatesScope(t *testing.T) {
	client, db := newTestClient(t)
	store := NewJobStore(client, testQueue)
	ctx := context.Background()

	_, created, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
	require.NoError(t, err)
	require.True(t, created)

	id, created, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, id)

	other, created, err := store.EnqueueJob(ctx, "conn-2", syncConfig())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(2), other)

	queued, err := db.List(testQueue)
	require.NoError(t, err)
	assert.Len(t, queued, 2)
}

func TestEnqueueConcurrentSameScope(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewJobStore(client, testQueue)

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.EnqueueJob(context.Background(), "conn-1", syncConfig())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestEnqueuePublishesEvent(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewJobStore(client, testQueue)
	ctx := context.Background()

	sub := client.rdb.Subscribe(ctx, EventChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	id, _, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
	require.NoError(t, err)

	msg := <-sub.Channel()
	var event struct {
		Type       string `json:"type"`
		JobID      int64  `json:"job_id"`
		Scope      string `json:"scope"`
		ConfigType string `json:"config_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, "JOB_CREATED", event.Type)
	assert.Equal(t, id, event.JobID)
	assert.Equal(t, "conn-1", event.Scope)
	assert.Equal(t, "sync", event.ConfigType)
}

func TestEnqueueRejectsZeroConfig(t *testing.T) {
	client, db := newTestClient(t)
	store := NewJobStore(client, testQueue)

	_, _, err := store.EnqueueJob(context.Background(), "conn-1", domain.JobConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidJobConfig)
	assert.False(t, db.Exists("jobs:scope:conn-1"))
}

func TestSetStatusReleasesScope(t *testing.T) {
	client, db := newTestClient(t)
	store := NewJobStore(client, testQueue)
	ctx := context.Background()

	id, _, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
	require.NoError(t, err)

	require.NoError(t, store.SetStatus(ctx, id, domain.JobStatusRunning))
	assert.True(t, db.Exists("jobs:scope:conn-1"))

	require.NoError(t, store.SetStatus(ctx, id, domain.JobStatusSucceeded))
	assert.False(t, db.Exists("jobs:scope:conn-1"))
	assert.Equal(t, "succeeded", db.HGet(jobKey(id), "status"))

	next, created, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, id, next)
}

func TestSetStatusReopen(t *testing.T) {
	client, db := newTestClient(t)
	store := NewJobStore(client, testQueue)
	ctx := context.Background()

	first, _, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(ctx, first, domain.JobStatusFailed))

	t.Run("free scope", func(t *testing.T) {
		require.NoError(t, store.SetStatus(ctx, first, domain.JobStatusIncomplete))
		slot, err := db.Get("jobs:scope:conn-1")
		require.NoError(t, err)
		assert.Equal(t, "1", slot)
		require.NoError(t, store.SetStatus(ctx, first, domain.JobStatusFailed))
	})

	t.Run("occupied scope", func(t *testing.T) {
		second, created, err := store.EnqueueJob(ctx, "conn-1", syncConfig())
		require.NoError(t, err)
		require.True(t, created)

		err = store.SetStatus(ctx, first, domain.JobStatusRunning)
		assert.ErrorIs(t, err, ports.ErrScopeOccupied)
		assert.Equal(t, "failed", db.HGet(jobKey(first), "status"))

		slot, err := db.Get("jobs:scope:conn-1")
		require.NoError(t, err)
		assert.Equal(t, "2", slot)
		assert.Equal(t, int64(2), second)
	})
}

func TestSetStatusErrors(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewJobStore(client, testQueue)

	err := store.SetStatus(context.Background(), 99, domain.JobStatusCancelled)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	err = store.SetStatus(context.Background(), 1, domain.JobStatus("paused"))
	assert.Error(t, err)
}
