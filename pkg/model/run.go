package model

import (
	"time"

	"github.com/google/uuid"
)

// Run outcomes
const (
	OutcomeRunning   = "running"
	OutcomeSucceeded = "succeeded"
	OutcomeCommitted = "committed"
	OutcomeAborted   = "aborted"
	OutcomePartial   = "partial"
	OutcomeFailed    = "failed"
)

// Run records one workflow invocation against a database
type Run struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Workflow   string     `gorm:"column:workflow"`
	Database   string     `gorm:"column:db_name"`
	Subject    string     `gorm:"column:subject"`
	Actor      string     `gorm:"column:actor"`
	Outcome    string     `gorm:"column:outcome"`
	Detail     string     `gorm:"column:detail"`
	StartedAt  time.Time  `gorm:"column:started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

func (Run) TableName() string {
	return "ngsec_runs"
}

// Duration returns how long a finished run took, or zero while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
