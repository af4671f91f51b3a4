package naming

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrOutsideDomain is returned for graphs that do not live under the
// configured domain prefix.
var ErrOutsideDomain = errors.New("naming: graph is outside the domain")

var localNameReplacer = strings.NewReplacer("/", "_", "#", "_", ":", "_")

const (
	accessRead   = "read"
	accessUpdate = "update"

	defaultScope = "default"
	passiveScope = "passive"
)

// Policy derives role names and resources for one database.
type Policy struct {
	DB      string
	Domain  string
	Profile Profile
}

// LocalName returns the part of iri after the domain prefix with path
// separators replaced by underscores.
func (p Policy) LocalName(iri string) (string, error) {
	graph := Canonicalize(iri)
	domain := Canonicalize(p.Domain)
	if domain == "" || !strings.HasPrefix(graph, domain) {
		return "", fmt.Errorf("%w: %s (domain %s)", ErrOutsideDomain, graph, domain)
	}
	local := strings.TrimPrefix(graph, domain)
	if local == "" {
		return "", fmt.Errorf("%w: %s has no local name", ErrOutsideDomain, graph)
	}
	return localNameReplacer.Replace(local), nil
}

// DBReadRole is the role granting READ on the whole database.
func (p Policy) DBReadRole() string {
	return p.role("db", "", accessRead)
}

// DBUpdateRole is the role granting WRITE and DELETE on the whole database.
func (p Policy) DBUpdateRole() string {
	return p.role("db", "", accessUpdate)
}

// DefaultReadRole is the role granting READ on the default graph.
func (p Policy) DefaultReadRole() string {
	return p.role("ng", defaultScope, accessRead)
}

// DefaultUpdateRole is the role granting WRITE and DELETE on the default graph.
func (p Policy) DefaultUpdateRole() string {
	return p.role("ng", defaultScope, accessUpdate)
}

// GraphReadRole returns the role carrying READ on the graph. Under the
// grouped profile all graphs share one role. A graph whose name derives one
// of ReservedRoles yields a *ConflictError.
func (p Policy) GraphReadRole(iri string) (string, error) {
	if p.Profile == ProfileGrouped {
		return p.GroupReadRole(), nil
	}
	return p.graphRole(iri, accessRead)
}

// GraphUpdateRole returns the role carrying write access on the graph.
func (p Policy) GraphUpdateRole(iri string) (string, error) {
	return p.graphRole(iri, accessUpdate)
}

func (p Policy) graphRole(iri, level string) (string, error) {
	local, err := p.LocalName(iri)
	if err != nil {
		return "", err
	}
	role := p.role("ng", local, level)
	if slices.Contains(p.ReservedRoles(), role) {
		return "", &ConflictError{Role: role, Graph: Canonicalize(iri)}
	}
	return role, nil
}

// ReservedRoles returns the fixed roles no graph may derive: the database
// and default graph roles, plus the shared group role unless the profile
// is grouped.
func (p Policy) ReservedRoles() []string {
	roles := []string{p.DBReadRole(), p.DBUpdateRole(), p.DefaultReadRole(), p.DefaultUpdateRole()}
	if p.Profile != ProfileGrouped {
		roles = append(roles, p.GroupReadRole())
	}
	return roles
}

// GroupReadRole is the shared read role used by the grouped profile.
func (p Policy) GroupReadRole() string {
	return p.role("ng", passiveScope, accessRead)
}

// SharedReadRole reports whether graph read roles are shared between graphs.
func (p Policy) SharedReadRole() bool {
	return p.Profile == ProfileGrouped
}

// DBRef refers to the policy's database.
func (p Policy) DBRef() ResourceRef {
	return DBRef(p.DB)
}

// DefaultGraphRef refers to the policy's default graph.
func (p Policy) DefaultGraphRef() ResourceRef {
	return DefaultGraphRef(p.DB)
}

// GraphRef refers to a named graph of the policy's database.
func (p Policy) GraphRef(iri string) ResourceRef {
	return GraphRef(p.DB, iri)
}

func (p Policy) role(kind, scope, level string) string {
	parts := []string{kind}
	if p.Profile != ProfileGlobal {
		parts = append(parts, p.DB)
	}
	if scope != "" {
		parts = append(parts, scope)
	}
	parts = append(parts, level)
	return strings.Join(parts, "_")
}
