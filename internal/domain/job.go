package domain

import (
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusRunning    JobStatus = "running"
	JobStatusIncomplete JobStatus = "incomplete"
	JobStatusFailed     JobStatus = "failed"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusCancelled  JobStatus = "cancelled"
)

// NonTerminalStatuses occupy a scope: at most one job per scope may be in
// one of these.
var NonTerminalStatuses = []JobStatus{
	JobStatusPending,
	JobStatusRunning,
	JobStatusIncomplete,
}

var TerminalStatuses = []JobStatus{
	JobStatusFailed,
	JobStatusSucceeded,
	JobStatusCancelled,
}

func (s JobStatus) IsTerminal() bool {
	for _, nt := range NonTerminalStatuses {
		if s == nt {
			return false
		}
	}
	return true
}

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusIncomplete,
		JobStatusFailed, JobStatusSucceeded, JobStatusCancelled:
		return true
	}
	return false
}

type Job struct {
	ID     int64
	Scope  string
	Config JobConfig
	Status JobStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
