package cutover

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/audit"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/naming"
	"github.com/decomp/ngsec/pkg/provision"
)

// Client is the part of access.Client a cutover needs.
type Client interface {
	access.RoleManager
	access.UserDirectory
}

// Aliases binds and unbinds graph aliases.
type Aliases interface {
	DB() string
	AddAlias(ctx context.Context, tx *access.Tx, alias, graph string) error
	RemoveAlias(ctx context.Context, tx *access.Tx, alias, graph string) error
}

// Options configures a Cutover.
type Options struct {
	Policy naming.Policy
	// Privileged users are skipped. Defaults to provision.DefaultPrivileged.
	Privileged []string
	Actor      string
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Result describes what a cutover did.
type Result struct {
	Alias          string
	NewGraph       string
	OldGraph       string
	NewRole        string
	OldRole        string
	UsersUpdated   []string
	UsersUnchanged []string
	UsersSkipped   []string
	UsersFailed    []string
	OldRoleRemoved bool
	// RemoveErr is set when the old role outlived a complete population.
	// Access has already moved, so it only calls for manual cleanup.
	RemoveErr error
}

// Cutover moves an alias and read access between graphs.
type Cutover struct {
	client      Client
	aliases     Aliases
	policy      naming.Policy
	provisioner *provision.Provisioner
	actor       string
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// New returns a Cutover for opts.Policy.DB.
func New(client Client, aliases Aliases, opts Options) *Cutover {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cutover{
		client:  client,
		aliases: aliases,
		policy:  opts.Policy,
		provisioner: provision.New(client, nil, provision.Options{
			Policy:     opts.Policy,
			Privileged: opts.Privileged,
			Actor:      opts.Actor,
			Logger:     opts.Logger,
			Metrics:    opts.Metrics,
		}),
		actor:   opts.Actor,
		logger:  opts.Logger.With(zap.String("db", opts.Policy.DB)),
		metrics: opts.Metrics,
	}
}

// Run moves alias from oldGraph to newGraph and swaps every user's read role.
// A *PartialPopulationError means some users still hold only the old role;
// the old role is then left in place.
func (c *Cutover) Run(ctx context.Context, newGraph, oldGraph, alias string) (*Result, error) {
	res := &Result{
		Alias:    alias,
		NewGraph: naming.Canonicalize(newGraph),
		OldGraph: naming.Canonicalize(oldGraph),
	}
	if res.NewGraph == res.OldGraph {
		return res, ErrSameGraph
	}
	var err error
	if res.OldRole, err = c.policy.GraphReadRole(res.OldGraph); err != nil {
		return res, fmt.Errorf("cutover: old graph: %w", err)
	}
	if _, err = c.policy.GraphReadRole(res.NewGraph); err != nil {
		return res, fmt.Errorf("cutover: new graph: %w", err)
	}
	log := c.logger.With(zap.String("alias", alias), zap.String("new", res.NewGraph), zap.String("old", res.OldGraph))

	if err := c.bind(ctx, "bind", alias, res.NewGraph); err != nil {
		return res, fmt.Errorf("cutover: bind %s to %s: %w", alias, res.NewGraph, err)
	}
	log.Info("alias bound to new graph")
	if err := c.bind(ctx, "unbind", alias, res.OldGraph); err != nil {
		return res, fmt.Errorf("cutover: unbind %s from %s: %w", alias, res.OldGraph, err)
	}
	log.Info("alias unbound from old graph")

	if res.NewRole, err = c.provisioner.EnsureGraphReadRole(ctx, res.NewGraph); err != nil {
		return res, fmt.Errorf("cutover: ensure role for %s: %w", res.NewGraph, err)
	}
	if res.NewRole == res.OldRole {
		log.Info("graphs share a read role; users keep their roles", zap.String("role", res.NewRole))
		return res, nil
	}

	if err := c.populate(ctx, res, log); err != nil {
		return res, err
	}

	err = c.client.RemoveRole(ctx, res.OldRole)
	c.metrics.Mutation(metrics.RoleRemoved, err)
	audit.Log(audit.RoleEvent{Actor: c.actor, Operation: "remove", Role: res.OldRole, Success: err == nil, ErrorMessage: errorMessage(err)})
	if err != nil {
		res.RemoveErr = err
		log.Warn("old role not removed; delete it manually", zap.String("role", res.OldRole), zap.Error(err))
		return res, nil
	}
	res.OldRoleRemoved = true
	log.Info("cutover complete", zap.String("removed_role", res.OldRole), zap.Int("users_updated", len(res.UsersUpdated)))
	return res, nil
}

func (c *Cutover) bind(ctx context.Context, op, alias, graph string) error {
	var err error
	kind := metrics.AliasBound
	if op == "bind" {
		err = c.aliases.AddAlias(ctx, nil, alias, graph)
	} else {
		kind = metrics.AliasUnbound
		err = c.aliases.RemoveAlias(ctx, nil, alias, graph)
	}
	c.metrics.Mutation(kind, err)
	audit.Log(audit.AliasEvent{
		Actor:        c.actor,
		Database:     c.aliases.DB(),
		Alias:        alias,
		Graph:        graph,
		Operation:    op,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
	return err
}

// populate swaps the old read role for the new one on every non-privileged
// user. A failing user does not stop the others.
func (c *Cutover) populate(ctx context.Context, res *Result, log *zap.Logger) error {
	users, err := c.client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("cutover: list users: %w", err)
	}
	var errs error
	for _, user := range users {
		if c.provisioner.IsPrivileged(user) {
			res.UsersSkipped = append(res.UsersSkipped, user)
			continue
		}
		changed, err := c.swap(ctx, user, res.OldRole, res.NewRole)
		switch {
		case err != nil:
			log.Error("user not moved", zap.String("user", user), zap.Error(err))
			res.UsersFailed = append(res.UsersFailed, user)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", user, err))
		case changed:
			res.UsersUpdated = append(res.UsersUpdated, user)
		default:
			res.UsersUnchanged = append(res.UsersUnchanged, user)
		}
	}
	if errs != nil {
		return &PartialPopulationError{Users: res.UsersFailed, Err: errs}
	}
	return nil
}

// swap rewrites the roles of user with oldRole replaced by newRole. Every
// other role is kept. It reports whether a write was needed.
func (c *Cutover) swap(ctx context.Context, user, oldRole, newRole string) (bool, error) {
	current, err := c.client.ListUserRoles(ctx, user)
	if err != nil {
		return false, err
	}
	hadOld := slices.Contains(current, oldRole)
	hasNew := slices.Contains(current, newRole)
	if !hadOld && hasNew {
		return false, nil
	}
	updated := slices.DeleteFunc(slices.Clone(current), func(r string) bool { return r == oldRole })
	if !hasNew {
		updated = append(updated, newRole)
	}

	err = c.client.SetUserRoles(ctx, user, updated)
	c.metrics.Mutation(metrics.UserRolesSet, err)
	ev := audit.UserRolesEvent{Actor: c.actor, User: user, Success: err == nil, ErrorMessage: errorMessage(err)}
	if !hasNew {
		ev.Added = []string{newRole}
	}
	if hadOld {
		ev.Removed = []string{oldRole}
	}
	audit.Log(ev)
	if err != nil {
		return false, err
	}
	c.logger.Debug("moved user to new role", zap.String("user", user), zap.Strings("roles", updated))
	return true, nil
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
