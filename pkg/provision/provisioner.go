package provision

import (
	"context"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/audit"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/naming"
)

// ServiceGraphLocalName is appended to the domain to form the default
// service graph.
const ServiceGraphLocalName = "iasAsmtGraph"

// DefaultPrivileged lists the users whose roles are never touched.
var DefaultPrivileged = []string{"admin", "anonymous"}

// Client is the part of access.Client provisioning needs.
type Client interface {
	access.RoleManager
	access.UserDirectory
}

// GraphLister discovers the named graphs of the database.
type GraphLister interface {
	NamedGraphs(ctx context.Context) ([]string, error)
}

// Options configures a Provisioner.
type Options struct {
	Policy naming.Policy
	// ServiceGraph receives a dedicated write role. Defaults to the domain
	// followed by iasAsmtGraph.
	ServiceGraph string
	// DefaultGraphWriter is the service account granted write access to the
	// database and its default graph.
	DefaultGraphWriter string
	// ServiceGraphWriter is the service account granted write access to the
	// database and the service graph.
	ServiceGraphWriter string
	// Privileged users are skipped. Defaults to DefaultPrivileged.
	Privileged []string
	// Actor is recorded as the user of audit events.
	Actor   string
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Report summarises what a run did.
type Report struct {
	Roles          []string
	Created        []string
	Granted        int
	Graphs         []string
	UsersUpdated   []string
	UsersUnchanged []string
	UsersSkipped   []string
}

// Provisioner creates roles and assigns them to users.
type Provisioner struct {
	client     Client
	graphs     GraphLister
	policy     naming.Policy
	opts       Options
	privileged map[string]bool
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// New returns a Provisioner for opts.Policy.DB.
func New(client Client, graphs GraphLister, opts Options) *Provisioner {
	if opts.ServiceGraph == "" {
		opts.ServiceGraph = naming.Canonicalize(opts.Policy.Domain) + ServiceGraphLocalName
	}
	if opts.Privileged == nil {
		opts.Privileged = DefaultPrivileged
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	privileged := make(map[string]bool, len(opts.Privileged))
	for _, u := range opts.Privileged {
		privileged[u] = true
	}
	return &Provisioner{
		client:     client,
		graphs:     graphs,
		policy:     opts.Policy,
		opts:       opts,
		privileged: privileged,
		logger:     logger.With(zap.String("db", opts.Policy.DB)),
		metrics:    opts.Metrics,
	}
}

// IsPrivileged reports whether user is excluded from role rewrites.
func (p *Provisioner) IsPrivileged(user string) bool {
	return p.privileged[user]
}

// run carries the state of one Run call.
type run struct {
	report     *Report
	readRoles  []string
	extraRoles map[string][]string
}

func (r *run) addReadRole(role string) {
	if !slices.Contains(r.readRoles, role) {
		r.readRoles = append(r.readRoles, role)
	}
}

// Run executes every stage in order.
func (p *Provisioner) Run(ctx context.Context) (*Report, error) {
	r := &run{report: &Report{}, extraRoles: map[string][]string{}}

	steps := []struct {
		stage Stage
		fn    func(context.Context, *run) error
	}{
		{StageDBRoles, p.dbRoles},
		{StageDefaultGraphRoles, p.defaultGraphRoles},
		{StageNamedGraphRoles, p.namedGraphRoles},
		{StageServiceWriteRoles, p.serviceWriteRoles},
		{StageUserRoles, p.userRoles},
	}
	for _, step := range steps {
		p.logger.Info("provisioning stage", zap.String("stage", string(step.stage)))
		if err := step.fn(ctx, r); err != nil {
			p.logger.Error("provisioning stopped", zap.String("stage", string(step.stage)), zap.Error(err))
			return r.report, err
		}
	}
	p.logger.Info("provisioning complete",
		zap.Int("roles", len(r.report.Roles)),
		zap.Int("created", len(r.report.Created)),
		zap.Int("granted", r.report.Granted),
		zap.Int("graphs", len(r.report.Graphs)),
		zap.Int("users_updated", len(r.report.UsersUpdated)))
	return r.report, nil
}

func (p *Provisioner) dbRoles(ctx context.Context, r *run) error {
	db := p.policy.DBRef()
	if err := p.ensure(ctx, r, StageDBRoles, p.policy.DBReadRole(), db.Permission(access.ActionRead)); err != nil {
		return err
	}
	r.addReadRole(p.policy.DBReadRole())
	return p.ensure(ctx, r, StageDBRoles, p.policy.DBUpdateRole(),
		db.Permission(access.ActionWrite), db.Permission(access.ActionDelete))
}

func (p *Provisioner) defaultGraphRoles(ctx context.Context, r *run) error {
	def := p.policy.DefaultGraphRef()
	if err := p.ensure(ctx, r, StageDefaultGraphRoles, p.policy.DefaultReadRole(), def.Permission(access.ActionRead)); err != nil {
		return err
	}
	r.addReadRole(p.policy.DefaultReadRole())
	return p.ensure(ctx, r, StageDefaultGraphRoles, p.policy.DefaultUpdateRole(),
		def.Permission(access.ActionWrite), def.Permission(access.ActionDelete))
}

func (p *Provisioner) namedGraphRoles(ctx context.Context, r *run) error {
	graphs, err := p.discover(ctx)
	if err != nil {
		return &StageError{Stage: StageNamedGraphRoles, Resource: p.policy.DB, Err: err}
	}
	registry := naming.NewRegistry()
	for _, graph := range graphs {
		role, err := p.policy.GraphReadRole(graph)
		if err != nil {
			return &StageError{Stage: StageNamedGraphRoles, Resource: graph, Err: err}
		}
		if !p.policy.SharedReadRole() {
			if err := registry.Register(role, graph); err != nil {
				return &StageError{Stage: StageNamedGraphRoles, Resource: graph, Err: err}
			}
		}
		if err := p.ensure(ctx, r, StageNamedGraphRoles, role, p.policy.GraphRef(graph).Permission(access.ActionRead)); err != nil {
			return err
		}
		r.addReadRole(role)
		r.report.Graphs = append(r.report.Graphs, graph)
	}
	return nil
}

// discover returns the distinct named graphs under the domain, sorted.
// The domain IRI itself has no local name and is skipped.
func (p *Provisioner) discover(ctx context.Context) ([]string, error) {
	all, err := p.graphs.NamedGraphs(ctx)
	if err != nil {
		return nil, err
	}
	domain := naming.Canonicalize(p.policy.Domain)
	seen := map[string]bool{}
	var graphs []string
	for _, g := range all {
		g = naming.Canonicalize(g)
		if seen[g] || !strings.HasPrefix(g, domain) {
			continue
		}
		seen[g] = true
		if g == domain {
			p.logger.Warn("skipping graph named after the domain", zap.String("graph", g))
			continue
		}
		graphs = append(graphs, g)
	}
	sort.Strings(graphs)
	p.logger.Info("discovered named graphs", zap.Int("count", len(graphs)), zap.Int("total", len(all)))
	return graphs, nil
}

func (p *Provisioner) serviceWriteRoles(ctx context.Context, r *run) error {
	role, err := p.policy.GraphUpdateRole(p.opts.ServiceGraph)
	if err != nil {
		return &StageError{Stage: StageServiceWriteRoles, Resource: p.opts.ServiceGraph, Err: err}
	}
	if err := p.ensure(ctx, r, StageServiceWriteRoles, role, p.policy.GraphRef(p.opts.ServiceGraph).Permission(access.ActionWrite)); err != nil {
		return err
	}
	if u := p.opts.DefaultGraphWriter; u != "" {
		r.extraRoles[u] = append(r.extraRoles[u], p.policy.DBUpdateRole(), p.policy.DefaultUpdateRole())
	}
	if u := p.opts.ServiceGraphWriter; u != "" {
		r.extraRoles[u] = append(r.extraRoles[u], p.policy.DBUpdateRole(), role)
	}
	return nil
}

func (p *Provisioner) userRoles(ctx context.Context, r *run) error {
	users, err := p.client.ListUsers(ctx)
	if err != nil {
		return &StageError{Stage: StageUserRoles, Err: err}
	}
	for _, user := range users {
		if p.IsPrivileged(user) {
			r.report.UsersSkipped = append(r.report.UsersSkipped, user)
			continue
		}
		want := append(slices.Clone(r.readRoles), r.extraRoles[user]...)
		changed, err := p.grantUser(ctx, user, want)
		if err != nil {
			return &StageError{Stage: StageUserRoles, Resource: user, Err: err}
		}
		if changed {
			r.report.UsersUpdated = append(r.report.UsersUpdated, user)
		} else {
			r.report.UsersUnchanged = append(r.report.UsersUnchanged, user)
		}
	}
	return nil
}

// grantUser adds roles to the user's current set and writes the union back
// in one call. It reports whether a write was needed.
func (p *Provisioner) grantUser(ctx context.Context, user string, roles []string) (bool, error) {
	current, err := p.client.ListUserRoles(ctx, user)
	if err != nil {
		return false, err
	}
	updated := slices.Clone(current)
	var added []string
	for _, role := range roles {
		if !slices.Contains(updated, role) {
			updated = append(updated, role)
			added = append(added, role)
		}
	}
	if len(added) == 0 {
		return false, nil
	}
	err = p.client.SetUserRoles(ctx, user, updated)
	p.metrics.Mutation(metrics.UserRolesSet, err)
	audit.Log(audit.UserRolesEvent{
		Actor:        p.opts.Actor,
		User:         user,
		Added:        added,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
	if err != nil {
		return false, err
	}
	p.logger.Info("granted roles", zap.String("user", user), zap.Strings("added", added))
	return true, nil
}

func (p *Provisioner) ensure(ctx context.Context, r *run, stage Stage, role string, perms ...access.Permission) error {
	created, granted, err := p.ensureRole(ctx, role, perms...)
	if err != nil {
		return &StageError{Stage: stage, Resource: role, Err: err}
	}
	r.report.Roles = append(r.report.Roles, role)
	if created {
		r.report.Created = append(r.report.Created, role)
	}
	r.report.Granted += granted
	return nil
}

// EnsureRole creates role if needed and grants it perms. Roles and grants
// that already exist are left alone.
func (p *Provisioner) EnsureRole(ctx context.Context, role string, perms ...access.Permission) error {
	_, _, err := p.ensureRole(ctx, role, perms...)
	return err
}

// EnsureGraphReadRole ensures the read role of graph and returns its name.
func (p *Provisioner) EnsureGraphReadRole(ctx context.Context, graph string) (string, error) {
	role, err := p.policy.GraphReadRole(graph)
	if err != nil {
		return "", err
	}
	if err := p.EnsureRole(ctx, role, p.policy.GraphRef(graph).Permission(access.ActionRead)); err != nil {
		return "", err
	}
	return role, nil
}

func (p *Provisioner) ensureRole(ctx context.Context, role string, perms ...access.Permission) (created bool, granted int, err error) {
	err = p.client.CreateRole(ctx, role)
	switch {
	case access.IsAlreadyExists(err):
		p.logger.Debug("role exists", zap.String("role", role))
	case err != nil:
		p.metrics.Mutation(metrics.RoleCreated, err)
		audit.Log(audit.RoleEvent{Actor: p.opts.Actor, Operation: "create", Role: role, ErrorMessage: err.Error()})
		return false, 0, err
	default:
		created = true
		p.metrics.Mutation(metrics.RoleCreated, nil)
		audit.Log(audit.RoleEvent{Actor: p.opts.Actor, Operation: "create", Role: role, Success: true})
		p.logger.Info("created role", zap.String("role", role))
	}

	for _, perm := range perms {
		err := p.client.AssignPermission(ctx, role, perm)
		switch {
		case access.IsAlreadyExists(err):
			continue
		case err != nil:
			p.metrics.Mutation(metrics.PermissionGranted, err)
			audit.Log(audit.PermissionEvent{Actor: p.opts.Actor, Role: role, Permission: perm, ErrorMessage: err.Error()})
			return created, granted, err
		}
		granted++
		p.metrics.Mutation(metrics.PermissionGranted, nil)
		audit.Log(audit.PermissionEvent{Actor: p.opts.Actor, Role: role, Permission: perm, Success: true})
		p.logger.Debug("granted permission", zap.String("role", role), zap.Stringer("permission", perm))
	}
	return created, granted, nil
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
