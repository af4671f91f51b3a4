package settings

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/audit"
	"github.com/decomp/ngsec/pkg/metrics"
)

const (
	// OptionGraphAliases can only change while the database is offline.
	OptionGraphAliases = "graph.aliases"
	// OptionNamedGraphSecurity can change while the database is online.
	OptionNamedGraphSecurity = "security.named.graphs"
)

// Options configures Ensure.
type Options struct {
	Actor   string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Result reports which options Ensure had to turn on.
type Result struct {
	AliasesEnabled     bool
	NamedGraphsSecured bool
	WasOffline         bool
	AlreadyConfigured  bool
}

// Ensure turns on graph aliases and named graph security for db. Enabling
// aliases takes the database offline for the duration of the change.
func Ensure(ctx context.Context, admin access.DatabaseAdmin, db string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("db", db))
	res := &Result{}

	current, err := admin.DatabaseOptions(ctx, db, OptionGraphAliases, OptionNamedGraphSecurity)
	if err != nil {
		return res, fmt.Errorf("settings: read options of %s: %w", db, err)
	}

	if enabled(current[OptionGraphAliases]) {
		log.Info("graph aliases already enabled")
	} else {
		if err := enableOffline(ctx, admin, db, opts, log); err != nil {
			return res, err
		}
		res.AliasesEnabled = true
		res.WasOffline = true
	}

	if enabled(current[OptionNamedGraphSecurity]) {
		log.Info("named graph security already enabled")
	} else {
		if err := set(ctx, admin, db, OptionNamedGraphSecurity, opts); err != nil {
			return res, err
		}
		res.NamedGraphsSecured = true
		log.Info("named graph security enabled")
	}
	res.AlreadyConfigured = !res.AliasesEnabled && !res.NamedGraphsSecured
	return res, nil
}

// enableOffline sets graph.aliases inside an offline window. The database is
// brought back online even when the change fails.
func enableOffline(ctx context.Context, admin access.DatabaseAdmin, db string, opts Options, log *zap.Logger) error {
	if err := admin.Offline(ctx, db); err != nil {
		return fmt.Errorf("settings: take %s offline: %w", db, err)
	}
	log.Info("database offline")

	err := set(ctx, admin, db, OptionGraphAliases, opts)
	if onlineErr := admin.Online(ctx, db); onlineErr != nil {
		log.Error("database left offline", zap.Error(onlineErr))
		err = multierr.Append(err, fmt.Errorf("settings: bring %s online: %w", db, onlineErr))
	} else {
		log.Info("database online")
	}
	if err != nil {
		return err
	}
	log.Info("graph aliases enabled")
	return nil
}

func set(ctx context.Context, admin access.DatabaseAdmin, db, option string, opts Options) error {
	values := map[string]any{option: true}
	err := admin.SetDatabaseOptions(ctx, db, values)
	opts.Metrics.Mutation(metrics.OptionsSet, err)
	audit.Log(audit.OptionsEvent{
		Actor:        opts.Actor,
		Database:     db,
		Options:      values,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
	if err != nil {
		return fmt.Errorf("settings: set %s on %s: %w", option, db, err)
	}
	return nil
}

// enabled interprets an option value as returned by the server.
func enabled(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
