package reap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/audit"
	"github.com/decomp/ngsec/pkg/graph"
	"github.com/decomp/ngsec/pkg/metrics"
)

// Graphs is the graph store a sweep runs against.
type Graphs interface {
	DB() string
	GraphsByAlias(ctx context.Context, alias string) ([]string, error)
	GraphsByKeyword(ctx context.Context, keyword string) ([]string, error)
	DropGraph(ctx context.Context, tx *access.Tx, graph string) error
}

// Options configures a Reaper.
type Options struct {
	Actor   string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Result describes a sweep. Current is empty when the alias is unbound.
type Result struct {
	Alias   string
	Current string
	Base    string
	Stale   []string
	Dropped []string
}

// Reaper drops stale snapshots.
type Reaper struct {
	graphs  Graphs
	actor   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New returns a Reaper.
func New(graphs Graphs, opts Options) *Reaper {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Reaper{
		graphs:  graphs,
		actor:   opts.Actor,
		logger:  opts.Logger.With(zap.String("db", graphs.DB())),
		metrics: opts.Metrics,
	}
}

// Reap drops every snapshot sharing the base name of the graph alias is
// bound to, except that graph.
func (r *Reaper) Reap(ctx context.Context, alias string) (*Result, error) {
	res := &Result{Alias: alias}
	log := r.logger.With(zap.String("alias", alias))

	bound, err := r.graphs.GraphsByAlias(ctx, alias)
	if err != nil {
		return res, fmt.Errorf("reap: resolve %s: %w", alias, err)
	}
	switch len(bound) {
	case 0:
		log.Info("alias is not bound; nothing to reap")
		return res, nil
	case 1:
		res.Current = bound[0]
	default:
		return res, fmt.Errorf("%w: %s -> %v", ErrAmbiguousAlias, alias, bound)
	}

	base, ok := graph.SnapshotBase(res.Current)
	if !ok {
		return res, fmt.Errorf("%w: %s", ErrNoSnapshotMarker, res.Current)
	}
	res.Base = base

	matches, err := r.graphs.GraphsByKeyword(ctx, base)
	if err != nil {
		return res, fmt.Errorf("reap: find graphs like %s: %w", base, err)
	}
	for _, g := range matches {
		if g != res.Current {
			res.Stale = append(res.Stale, g)
		}
	}
	if len(res.Stale) == 0 {
		log.Info("no stale snapshots", zap.String("current", res.Current))
		return res, nil
	}

	for _, g := range res.Stale {
		err := r.graphs.DropGraph(ctx, nil, g)
		r.metrics.Mutation(metrics.GraphDropped, err)
		audit.Log(audit.GraphEvent{
			Actor:        r.actor,
			Database:     r.graphs.DB(),
			Graph:        g,
			Operation:    "drop",
			Success:      err == nil,
			ErrorMessage: errorMessage(err),
		})
		if err != nil {
			log.Error("sweep stopped", zap.String("graph", g), zap.Strings("dropped", res.Dropped), zap.Error(err))
			return res, &DropError{Graph: g, Err: err}
		}
		res.Dropped = append(res.Dropped, g)
		log.Info("dropped stale snapshot", zap.String("graph", g))
	}
	return res, nil
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
