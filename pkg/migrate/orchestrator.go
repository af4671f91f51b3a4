package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/audit"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/naming"
)

// Graphs is the graph store a migration runs against.
type Graphs interface {
	DB() string
	Begin(ctx context.Context) (*access.Tx, error)
	Commit(ctx context.Context, tx *access.Tx) error
	Rollback(ctx context.Context, tx *access.Tx) error
	CountTriples(ctx context.Context, tx *access.Tx, graph string) (int, error)
	Aliases(ctx context.Context, tx *access.Tx, graph string) ([]string, error)
	CopyGraph(ctx context.Context, tx *access.Tx, from, to string) error
	AddAliases(ctx context.Context, tx *access.Tx, aliases []string, graph string) (int, error)
	RemoveAliases(ctx context.Context, tx *access.Tx, aliases []string, graph string) (int, error)
	DropGraph(ctx context.Context, tx *access.Tx, graph string) error
}

// Counts holds the triple counts of both graphs.
type Counts struct {
	From int
	To   int
}

// Summary describes a staged migration.
type Summary struct {
	From        string
	To          string
	Transaction string
	Aliases     []string
	Before      Counts
	After       Counts
}

// Result is the outcome of Migrate.
type Result struct {
	Outcome Outcome
	Summary Summary
}

// Options configures an Orchestrator.
type Options struct {
	Confirmer Confirmer
	Actor     string
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Orchestrator runs graph-to-graph migrations.
type Orchestrator struct {
	graphs  Graphs
	confirm Confirmer
	actor   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New returns an Orchestrator. Without a Confirmer nothing is ever committed.
func New(graphs Graphs, opts Options) *Orchestrator {
	if opts.Confirmer == nil {
		opts.Confirmer = Never
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Orchestrator{
		graphs:  graphs,
		confirm: opts.Confirmer,
		actor:   opts.Actor,
		logger:  opts.Logger.With(zap.String("db", graphs.DB())),
		metrics: opts.Metrics,
	}
}

// Migrate copies from into to and moves from's aliases, then drops from.
// A Failed result comes with the error that stopped it; Aborted and
// Committed results have none.
func (o *Orchestrator) Migrate(ctx context.Context, from, to string) (*Result, error) {
	from, to = naming.Canonicalize(from), naming.Canonicalize(to)
	res := &Result{Outcome: Failed, Summary: Summary{From: from, To: to}}
	if from == "" || to == "" {
		return res, fmt.Errorf("migrate: source and target graphs are required")
	}
	if from == to {
		return res, ErrSameGraph
	}
	log := o.logger.With(zap.String("from", from), zap.String("to", to))

	tx, err := o.graphs.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("migrate: begin transaction: %w", err)
	}
	res.Summary.Transaction = tx.ID
	log = log.With(zap.String("tx", tx.ID))
	log.Info("transaction started")

	if err := o.stage(ctx, tx, &res.Summary, log); err != nil {
		o.rollback(ctx, tx, log)
		return res, err
	}

	ok, err := o.confirm.Confirm(ctx, res.Summary)
	if err != nil {
		o.rollback(ctx, tx, log)
		return res, fmt.Errorf("migrate: confirm: %w", err)
	}
	if !ok {
		log.Info("commit declined")
		o.rollback(ctx, tx, log)
		res.Outcome = Aborted
		return res, nil
	}

	if err := o.graphs.Commit(ctx, tx); err != nil {
		audit.Log(audit.TransactionEvent{Actor: o.actor, Database: o.graphs.DB(), Transaction: tx.ID, Operation: "commit", ErrorMessage: err.Error()})
		o.rollback(ctx, tx, log)
		return res, fmt.Errorf("migrate: commit: %w", err)
	}
	audit.Log(audit.TransactionEvent{Actor: o.actor, Database: o.graphs.DB(), Transaction: tx.ID, Operation: "commit", Success: true})
	o.countCommitted(res.Summary)
	log.Info("migration committed")
	res.Outcome = Committed
	return res, nil
}

// stage performs every step inside tx and fills s.
func (o *Orchestrator) stage(ctx context.Context, tx *access.Tx, s *Summary, log *zap.Logger) error {
	var err error
	if s.Before, err = o.counts(ctx, tx, s.From, s.To); err != nil {
		return err
	}
	log.Info("triple counts before", zap.Int("from_triples", s.Before.From), zap.Int("to_triples", s.Before.To))

	if s.Aliases, err = o.graphs.Aliases(ctx, tx, s.From); err != nil {
		return fmt.Errorf("migrate: read aliases of %s: %w", s.From, err)
	}
	log.Info("aliases found", zap.Strings("aliases", s.Aliases))

	err = o.graphs.CopyGraph(ctx, tx, s.From, s.To)
	o.auditGraph("copy", s.From, s.To, tx, err)
	if err != nil {
		return fmt.Errorf("migrate: copy %s to %s: %w", s.From, s.To, err)
	}
	log.Info("triples copied")

	n, err := o.graphs.AddAliases(ctx, tx, s.Aliases, s.To)
	if err != nil || n != len(s.Aliases) {
		return &CountMismatchError{Op: "add", Graph: s.To, Want: len(s.Aliases), Got: n, Err: err}
	}
	o.auditAliases("bind", s.Aliases, s.To, tx)

	n, err = o.graphs.RemoveAliases(ctx, tx, s.Aliases, s.From)
	if err != nil || n != len(s.Aliases) {
		return &CountMismatchError{Op: "remove", Graph: s.From, Want: len(s.Aliases), Got: n, Err: err}
	}
	o.auditAliases("unbind", s.Aliases, s.From, tx)
	log.Info("aliases moved", zap.Int("count", len(s.Aliases)))

	err = o.graphs.DropGraph(ctx, tx, s.From)
	o.auditGraph("drop", "", s.From, tx, err)
	if err != nil {
		return fmt.Errorf("migrate: drop %s: %w", s.From, err)
	}
	log.Info("source dropped")

	if s.After, err = o.counts(ctx, tx, s.From, s.To); err != nil {
		return err
	}
	log.Info("triple counts after", zap.Int("from_triples", s.After.From), zap.Int("to_triples", s.After.To))
	return nil
}

func (o *Orchestrator) counts(ctx context.Context, tx *access.Tx, from, to string) (Counts, error) {
	var c Counts
	var err error
	if c.From, err = o.graphs.CountTriples(ctx, tx, from); err != nil {
		return c, fmt.Errorf("migrate: count %s: %w", from, err)
	}
	if c.To, err = o.graphs.CountTriples(ctx, tx, to); err != nil {
		return c, fmt.Errorf("migrate: count %s: %w", to, err)
	}
	return c, nil
}

// rollback discards tx, even when ctx is already cancelled. A failure is
// logged and does not replace the error that caused it.
func (o *Orchestrator) rollback(ctx context.Context, tx *access.Tx, log *zap.Logger) {
	err := o.graphs.Rollback(context.WithoutCancel(ctx), tx)
	audit.Log(audit.TransactionEvent{
		Actor:        o.actor,
		Database:     o.graphs.DB(),
		Transaction:  tx.ID,
		Operation:    "rollback",
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
	if err != nil {
		log.Warn("rollback failed; the server will expire the transaction", zap.Error(err))
		return
	}
	log.Info("transaction rolled back")
}

func (o *Orchestrator) auditGraph(op, source, graph string, tx *access.Tx, err error) {
	audit.Log(audit.GraphEvent{
		Actor:        o.actor,
		Database:     o.graphs.DB(),
		Graph:        graph,
		Source:       source,
		Operation:    op,
		Transaction:  tx.ID,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
}

func (o *Orchestrator) auditAliases(op string, aliases []string, graph string, tx *access.Tx) {
	for _, alias := range aliases {
		audit.Log(audit.AliasEvent{
			Actor:       o.actor,
			Database:    o.graphs.DB(),
			Alias:       alias,
			Graph:       graph,
			Operation:   op,
			Transaction: tx.ID,
			Success:     true,
		})
	}
}

// countCommitted records the staged mutations once they became visible.
func (o *Orchestrator) countCommitted(s Summary) {
	o.metrics.Mutation(metrics.GraphCopied, nil)
	o.metrics.Mutation(metrics.GraphDropped, nil)
	for range s.Aliases {
		o.metrics.Mutation(metrics.AliasBound, nil)
		o.metrics.Mutation(metrics.AliasUnbound, nil)
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
