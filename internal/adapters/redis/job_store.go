package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "jobs"
	EventChannel = "job-events"
)

// KEYS: slot, id counter, queue. ARGV: job key prefix, scope, config type,
// config, status, timestamp. Returns the new id, or nil when the slot is held.
var enqueueScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 1 then
		return false
	end
	local id = redis.call("INCR", KEYS[2])
	redis.call("HSET", ARGV[1] .. id,
		"id", id,
		"scope", ARGV[2],
		"config_type", ARGV[3],
		"config", ARGV[4],
		"status", ARGV[5],
		"created_at", ARGV[6],
		"updated_at", ARGV[6])
	redis.call("SET", KEYS[1], id)
	redis.call("RPUSH", KEYS[3], id)
	return id
`)

// KEYS: job hash. ARGV: new status, slot prefix, job id, timestamp, then the
// terminal statuses. Returns 0 for an unknown job and -1 when reopening a job
// whose scope is held by another.
var setStatusScript = redis.NewScript(`
	local current = redis.call("HGET", KEYS[1], "status")
	if not current then
		return 0
	end
	local terminal = {}
	for i = 5, #ARGV do
		terminal[ARGV[i]] = true
	end
	local slot = ARGV[2] .. redis.call("HGET", KEYS[1], "scope")
	if terminal[ARGV[1]] then
		if redis.call("GET", slot) == ARGV[3] then
			redis.call("DEL", slot)
		end
	elseif terminal[current] then
		if redis.call("EXISTS", slot) == 1 then
			return -1
		end
		redis.call("SET", slot, ARGV[3])
	end
	redis.call("HSET", KEYS[1], "status", ARGV[1], "updated_at", ARGV[4])
	return 1
`)

// JobStore keeps one slot key per scope pointing at its non-terminal job.
// Job ids are pushed onto queueKey for the execution engine.
type JobStore struct {
	client   *Client
	queueKey string
	now      func() time.Time
}

func NewJobStore(client *Client, queueKey string) *JobStore {
	return &JobStore{
		client:   client,
		queueKey: queueKey,
		now:      time.Now,
	}
}

func slotKey(scope string) string {
	return keyPrefix + ":scope:" + scope
}

func jobKey(id int64) string {
	return keyPrefix + ":job:" + strconv.FormatInt(id, 10)
}

func (s *JobStore) EnqueueJob(ctx context.Context, scope string, cfg domain.JobConfig) (int64, bool, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to marshal job config: %w", err)
	}

	ts := s.now().UTC().Format(time.RFC3339Nano)
	id, err := enqueueScript.Run(ctx, s.client.rdb,
		[]string{slotKey(scope), keyPrefix + ":next_id", s.queueKey},
		keyPrefix+":job:", scope, string(cfg.ConfigType()), payload, string(domain.JobStatusPending), ts,
	).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis enqueue failed for scope %s: %w", scope, err)
	}

	if err := s.publishCreated(ctx, id, scope, cfg.ConfigType()); err != nil {
		// the job exists either way
		slog.Warn("failed to publish job event", "job_id", id, "scope", scope, "error", err)
	}

	return id, true, nil
}

func (s *JobStore) publishCreated(ctx context.Context, id int64, scope string, configType domain.ConfigType) error {
	event := map[string]interface{}{
		"type":        "JOB_CREATED",
		"job_id":      id,
		"scope":       scope,
		"config_type": configType,
		"timestamp":   s.now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.client.rdb.Publish(ctx, EventChannel, data).Err()
}

func (s *JobStore) SetStatus(ctx context.Context, jobID int64, status domain.JobStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid job status %q", status)
	}

	args := []interface{}{
		string(status),
		keyPrefix + ":scope:",
		strconv.FormatInt(jobID, 10),
		s.now().UTC().Format(time.RFC3339Nano),
	}
	for _, st := range domain.TerminalStatuses {
		args = append(args, string(st))
	}

	res, err := setStatusScript.Run(ctx, s.client.rdb, []string{jobKey(jobID)}, args...).Int64()
	if err != nil {
		return fmt.Errorf("redis status update failed for job %d: %w", jobID, err)
	}

	switch res {
	case 0:
		return fmt.Errorf("job %d: %w", jobID, ports.ErrNotFound)
	case -1:
		return fmt.Errorf("job %d cannot be reopened: %w", jobID, ports.ErrScopeOccupied)
	}
	return nil
}
