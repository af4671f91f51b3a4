package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decomp/ngsec/pkg/model"
)

// DefaultLimit is the number of runs Recent returns when asked for none.
const DefaultLimit = 20

// Ledger records workflow runs.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a ledger backed by db.
func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Start records the beginning of a run.
func (l *Ledger) Start(ctx context.Context, workflow, database, subject, actor string) (*model.Run, error) {
	run := &model.Run{
		ID:        uuid.New(),
		Workflow:  workflow,
		Database:  database,
		Subject:   subject,
		Actor:     actor,
		Outcome:   model.OutcomeRunning,
		StartedAt: l.now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("ledger: start %s run: %w", workflow, err)
	}
	return run, nil
}

// Finish records the outcome of run.
func (l *Ledger) Finish(ctx context.Context, run *model.Run, outcome, detail string) error {
	finished := l.now().UTC()
	err := l.db.WithContext(ctx).Model(run).Updates(map[string]any{
		"outcome":     outcome,
		"detail":      detail,
		"finished_at": finished,
	}).Error
	if err != nil {
		return fmt.Errorf("ledger: finish run %s: %w", run.ID, err)
	}
	run.Outcome = outcome
	run.Detail = detail
	run.FinishedAt = &finished
	return nil
}

// Recent returns the latest runs, newest first, optionally restricted to one
// workflow.
func (l *Ledger) Recent(ctx context.Context, workflow string, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := l.db.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if workflow != "" {
		q = q.Where("workflow = ?", workflow)
	}
	var runs []model.Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	return runs, nil
}
