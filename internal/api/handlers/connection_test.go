package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
	"github.com/alexchny/connection-jobs/internal/service"
)

type fakeFactory struct {
	jobID   int64
	created bool
	err     error

	gotID      uuid.UUID
	gotStreams []domain.StreamDescriptor
	deadline   bool
}

func (f *fakeFactory) Sync(ctx context.Context, id uuid.UUID) (int64, bool, error) {
	f.gotID = id
	_, f.deadline = ctx.Deadline()
	return f.jobID, f.created, f.err
}

func (f *fakeFactory) Reset(ctx context.Context, id uuid.UUID, streams []domain.StreamDescriptor) (int64, bool, error) {
	f.gotID = id
	f.gotStreams = streams
	_, f.deadline = ctx.Deadline()
	return f.jobID, f.created, f.err
}

type fakeLimiter struct {
	allowed bool
	wait    time.Duration
	err     error
	keys    []string
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.wait, l.err
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSyncConnectionCreated(t *testing.T) {
	factory := &fakeFactory{jobID: 12, created: true}
	limiter := &fakeLimiter{allowed: true}
	h := NewConnectionHandler(factory, limiter, time.Second)
	id := uuid.New()

	rec := post(h.SyncConnection, fmt.Sprintf(`{"connectionId":%q}`, id))

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		JobID int64 `json:"jobId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(12), body.JobID)
	assert.Equal(t, id, factory.gotID)
	assert.True(t, factory.deadline)
	assert.Equal(t, []string{"submission:" + id.String()}, limiter.keys)
}

func TestSyncConnectionAlreadyQueued(t *testing.T) {
	h := NewConnectionHandler(&fakeFactory{}, nil, time.Second)

	rec := post(h.SyncConnection, fmt.Sprintf(`{"connectionId":%q}`, uuid.New()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"already_queued"}`, rec.Body.String())
}

func TestResetConnectionPassesStreams(t *testing.T) {
	factory := &fakeFactory{jobID: 3, created: true}
	h := NewConnectionHandler(factory, nil, time.Second)

	rec := post(h.ResetConnection, fmt.Sprintf(
		`{"connectionId":%q,"streams":[{"name":"users","namespace":"public"},{"name":"orders"}]}`, uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []domain.StreamDescriptor{
		{Name: "users", Namespace: "public"},
		{Name: "orders"},
	}, factory.gotStreams)
}

func TestConnectionHandlerErrors(t *testing.T) {
	validBody := fmt.Sprintf(`{"connectionId":%q}`, uuid.New())

	tests := map[string]struct {
		body    string
		factory *fakeFactory
		reset   bool
		code    int
	}{
		"invalid json":       {body: `{`, factory: &fakeFactory{}, code: http.StatusBadRequest},
		"missing id":         {body: `{}`, factory: &fakeFactory{}, code: http.StatusBadRequest},
		"malformed id":       {body: `{"connectionId":"nope"}`, factory: &fakeFactory{}, code: http.StatusBadRequest},
		"unnamed stream":     {body: `{"connectionId":"` + uuid.NewString() + `","streams":[{}]}`, factory: &fakeFactory{}, reset: true, code: http.StatusBadRequest},
		"unknown connection": {body: validBody, factory: &fakeFactory{err: fmt.Errorf("load: %w", ports.ErrNotFound)}, code: http.StatusNotFound},
		"missing operation":  {body: validBody, factory: &fakeFactory{err: fmt.Errorf("operation x: %w", service.ErrOperationNotFound)}, code: http.StatusUnprocessableEntity},
		"inactive":           {body: validBody, factory: &fakeFactory{err: service.ErrConnectionInactive}, reset: true, code: http.StatusConflict},
		"store failure":      {body: validBody, factory: &fakeFactory{err: errors.New("db down")}, code: http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := NewConnectionHandler(tc.factory, nil, time.Second)
			handle := h.SyncConnection
			if tc.reset {
				handle = h.ResetConnection
			}

			rec := post(handle, tc.body)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestConnectionHandlerRateLimited(t *testing.T) {
	factory := &fakeFactory{created: true}
	h := NewConnectionHandler(factory, &fakeLimiter{wait: 1500 * time.Millisecond}, time.Second)

	rec := post(h.SyncConnection, fmt.Sprintf(`{"connectionId":%q}`, uuid.New()))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, uuid.Nil, factory.gotID)
}

func TestConnectionHandlerLimiterFailureAllows(t *testing.T) {
	factory := &fakeFactory{jobID: 1, created: true}
	h := NewConnectionHandler(factory, &fakeLimiter{err: errors.New("redis down")}, time.Second)

	rec := post(h.SyncConnection, fmt.Sprintf(`{"connectionId":%q}`, uuid.New()))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestConnectionHandlerMethodNotAllowed(t *testing.T) {
	h := NewConnectionHandler(&fakeFactory{}, nil, time.Second)
	rec := httptest.NewRecorder()

	h.SyncConnection(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
