package models

import (
	"time"

	"github.com/markelira/elira-insight/models/platform"
)

const (
	JobRunRunning   = "running"
	JobRunSucceeded = "succeeded"
	JobRunFailed    = "failed"
)

// JobRun is the scheduler's persisted run record. One (job, window_start)
// pair that reached succeeded is never run again, which keeps replays and
// overlapping replicas from double-firing a window.
type JobRun struct {
	platform.Base `json:",inline" bson:",inline"`
	Job           string    `json:"job" bson:"job"`
	WindowStart   time.Time `json:"window_start" bson:"window_start"`
	StartedAt     time.Time `json:"started_at" bson:"started_at"`
	FinishedAt    time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
	Status        string    `json:"status" bson:"status"`
	Error         string    `json:"error,omitempty" bson:"error,omitempty"`
	Notifications int       `json:"notifications" bson:"notifications"`
}
