package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexchny/connection-jobs/internal/domain"
	"github.com/alexchny/connection-jobs/internal/ports"
)

type statusCall struct {
	jobID  int64
	status domain.JobStatus
}

type fakeStatusWriter struct {
	err   error
	calls []statusCall
}

func (s *fakeStatusWriter) SetStatus(_ context.Context, jobID int64, status domain.JobStatus) error {
	s.calls = append(s.calls, statusCall{jobID: jobID, status: status})
	return s.err
}

func serveStatus(writer ports.JobStatusWriter, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/jobs/{id}/status", NewJobHandler(writer).UpdateStatus)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestUpdateStatus(t *testing.T) {
	writer := &fakeStatusWriter{}

	rec := serveStatus(writer, http.MethodPost, "/api/v1/jobs/12/status", `{"status":"succeeded"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobId":12,"status":"succeeded"}`, rec.Body.String())
	assert.Equal(t, []statusCall{{jobID: 12, status: domain.JobStatusSucceeded}}, writer.calls)
}

func TestUpdateStatusErrors(t *testing.T) {
	tests := map[string]struct {
		path string
		body string
		err  error
		code int
	}{
		"non numeric id": {path: "/api/v1/jobs/abc/status", body: `{"status":"failed"}`, code: http.StatusBadRequest},
		"zero id":        {path: "/api/v1/jobs/0/status", body: `{"status":"failed"}`, code: http.StatusBadRequest},
		"invalid json":   {path: "/api/v1/jobs/1/status", body: `{`, code: http.StatusBadRequest},
		"unknown status": {path: "/api/v1/jobs/1/status", body: `{"status":"paused"}`, code: http.StatusBadRequest},
		"unknown job":    {path: "/api/v1/jobs/1/status", body: `{"status":"failed"}`, err: fmt.Errorf("job 1: %w", ports.ErrNotFound), code: http.StatusNotFound},
		"scope occupied": {path: "/api/v1/jobs/1/status", body: `{"status":"running"}`, err: ports.ErrScopeOccupied, code: http.StatusConflict},
		"store failure":  {path: "/api/v1/jobs/1/status", body: `{"status":"failed"}`, err: errors.New("db down"), code: http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := serveStatus(&fakeStatusWriter{err: tc.err}, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestUpdateStatusRejectsInvalidBeforeStore(t *testing.T) {
	writer := &fakeStatusWriter{}

	serveStatus(writer, http.MethodPost, "/api/v1/jobs/1/status", `{"status":""}`)

	assert.Empty(t, writer.calls)
}

func TestUpdateStatusMethodNotAllowed(t *testing.T) {
	rec := serveStatus(&fakeStatusWriter{}, http.MethodGet, "/api/v1/jobs/1/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
