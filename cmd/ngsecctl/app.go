package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/decomp/ngsec/pkg/access/stardog"
	"github.com/decomp/ngsec/pkg/audit"
	"github.com/decomp/ngsec/pkg/config"
	"github.com/decomp/ngsec/pkg/db"
	"github.com/decomp/ngsec/pkg/graph"
	"github.com/decomp/ngsec/pkg/ledger"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/model"
)

// app holds what every workflow command needs.
type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	client      *stardog.Client
	metrics     *metrics.Metrics
	ledger      *ledger.Ledger
	metricsFile string
}

// newApp loads and validates the configuration and connects the optional
// ledger and audit stores.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	client, err := stardog.New(stardog.Config{
		Endpoint: cfg.Endpoint,
		Username: cfg.Username,
		Password: cfg.Password,
		Token:    cfg.Token,
		Timeout:  cfg.RequestTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if expiry, ok, err := client.TokenExpiry(); err != nil {
		return nil, err
	} else if ok {
		logger.Debug("bearer token", zap.Time("expires", expiry))
	}

	if cfg.AuditDatabaseURL != "" {
		store, err := audit.OpenStore(cfg.AuditDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		audit.UseStore(store)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		metrics: metrics.New(),
	}
	a.metricsFile, _ = cmd.Flags().GetString("metrics-file")

	if cfg.LedgerDatabaseURL != "" {
		conn, err := db.Connect(db.Config{URL: cfg.LedgerDatabaseURL, Logger: logger})
		if err != nil {
			return nil, err
		}
		a.ledger = ledger.New(conn)
	}
	return a, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return zc.Build()
}

// actor is the name recorded in audit events and the ledger.
func (a *app) actor() string {
	if a.cfg.Username != "" {
		return a.cfg.Username
	}
	return "token"
}

// store returns the graph store for the configured database.
func (a *app) store() *graph.Store {
	return graph.NewStore(a.client, a.cfg.Database)
}

// record runs fn as one workflow run: it is timed, counted and, when a ledger
// is configured, recorded there. fn returns the outcome and a short detail.
func (a *app) record(ctx context.Context, workflow, subject string, fn func(context.Context) (string, string, error)) error {
	tracker := a.metrics.Track(workflow)

	var run *model.Run
	if a.ledger != nil {
		var err error
		if run, err = a.ledger.Start(ctx, workflow, a.cfg.Database, subject, a.actor()); err != nil {
			a.logger.Warn("run not recorded", zap.Error(err))
		}
	}

	outcome, detail, err := fn(ctx)
	if err != nil {
		outcome = model.OutcomeFailed
		if detail == "" {
			detail = err.Error()
		}
	}
	tracker.End(outcome)

	if run != nil {
		if ferr := a.ledger.Finish(ctx, run, outcome, detail); ferr != nil {
			a.logger.Warn("run outcome not recorded", zap.Error(ferr))
		}
	}
	return err
}

// close flushes logs and writes the metrics file.
func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.metricsFile); err != nil {
		a.logger.Warn("failed to write metrics file", zap.String("path", a.metricsFile), zap.Error(err))
	}
	_ = a.logger.Sync()
	if audit.DefaultStore != nil {
		_ = audit.DefaultStore.Close()
	}
}

// ledgerDB connects to the ledger database for the db and history commands.
func ledgerDB(cfg *config.Config) (*gorm.DB, error) {
	return db.Connect(db.Config{URL: cfg.LedgerDatabaseURL})
}

// fail prints err and exits. It is how every command reports failure.
func fail(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", prefix, err)
	os.Exit(1)
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
