package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/decomp/ngsec/pkg/access"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

func withError(msg, errMsg string) string {
	if errMsg != "" {
		msg += ": " + errMsg
	}
	return msg
}

// RoleEvent represents a role being created or removed
type RoleEvent struct {
	Actor        string
	Operation    string // "create", "remove"
	Role         string
	Success      bool
	ErrorMessage string
}

func (e RoleEvent) MessageID() string {
	return "role"
}

func (e RoleEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s %sd role %s", e.Actor, strings.TrimSuffix(e.Operation, "e"), e.Role)
	}
	return withError(fmt.Sprintf("%s tried to %s role %s", e.Actor, e.Operation, e.Role), e.ErrorMessage)
}

func (e RoleEvent) Severity() Severity {
	return severity(e.Success)
}

func (e RoleEvent) Facility() int {
	return FacilityAuthPriv
}

func (e RoleEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:    {"user": e.Actor},
		SDIDSubject: {"role": e.Role},
		SDIDAction:  {"operation": e.Operation, "result": result(e.Success)},
	}
}

// PermissionEvent represents a permission being granted to a role
type PermissionEvent struct {
	Actor        string
	Role         string
	Permission   access.Permission
	Success      bool
	ErrorMessage string
}

func (e PermissionEvent) MessageID() string {
	return "permission"
}

func (e PermissionEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s granted %s to role %s", e.Actor, e.Permission, e.Role)
	}
	return withError(fmt.Sprintf("%s tried to grant %s to role %s", e.Actor, e.Permission, e.Role), e.ErrorMessage)
}

func (e PermissionEvent) Severity() Severity {
	return severity(e.Success)
}

func (e PermissionEvent) Facility() int {
	return FacilityAuthPriv
}

func (e PermissionEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {"user": e.Actor},
		SDIDSubject: {
			"role":          e.Role,
			"privilege":     string(e.Permission.Action),
			"resource_type": string(e.Permission.ResourceType),
			"resource":      e.Permission.Resource,
		},
		SDIDAction: {"operation": "grant", "result": result(e.Success)},
	}
}

// UserRolesEvent represents the role set of a user being rewritten
type UserRolesEvent struct {
	Actor        string
	User         string
	Added        []string
	Removed      []string
	Success      bool
	ErrorMessage string
}

func (e UserRolesEvent) MessageID() string {
	return "user-roles"
}

func (e UserRolesEvent) Message() string {
	change := describeChange(e.Added, e.Removed)
	if e.Success {
		return fmt.Sprintf("%s set roles of %s (%s)", e.Actor, e.User, change)
	}
	return withError(fmt.Sprintf("%s tried to set roles of %s (%s)", e.Actor, e.User, change), e.ErrorMessage)
}

func describeChange(added, removed []string) string {
	var parts []string
	if len(added) > 0 {
		parts = append(parts, "+"+strings.Join(sorted(added), " +"))
	}
	if len(removed) > 0 {
		parts = append(parts, "-"+strings.Join(sorted(removed), " -"))
	}
	if len(parts) == 0 {
		return "unchanged"
	}
	return strings.Join(parts, " ")
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func (e UserRolesEvent) Severity() Severity {
	return severity(e.Success)
}

func (e UserRolesEvent) Facility() int {
	return FacilityAuthPriv
}

func (e UserRolesEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {"user": e.Actor},
		SDIDSubject: {
			"user":    e.User,
			"added":   strings.Join(sorted(e.Added), ","),
			"removed": strings.Join(sorted(e.Removed), ","),
		},
		SDIDAction: {"operation": "set-roles", "result": result(e.Success)},
	}
}

// AliasEvent represents an alias being bound to or unbound from a graph
type AliasEvent struct {
	Actor        string
	Database     string
	Alias        string
	Graph        string
	Operation    string // "bind", "unbind"
	Transaction  string
	Success      bool
	ErrorMessage string
}

func (e AliasEvent) MessageID() string {
	return "alias"
}

func (e AliasEvent) Message() string {
	verb, prep := "bound", "to"
	if e.Operation == "unbind" {
		verb, prep = "unbound", "from"
	}
	if e.Success {
		return fmt.Sprintf("%s %s alias %s %s %s", e.Actor, verb, e.Alias, prep, e.Graph)
	}
	return withError(fmt.Sprintf("%s tried to %s alias %s %s %s", e.Actor, e.Operation, e.Alias, prep, e.Graph), e.ErrorMessage)
}

func (e AliasEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AliasEvent) Facility() int {
	return FacilityLocal0
}

func (e AliasEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.Actor},
		SDIDGraph:  {"database": e.Database, "graph": e.Graph, "alias": e.Alias},
		SDIDAction: {"operation": e.Operation, "result": result(e.Success)},
	}
	if e.Transaction != "" {
		sd[SDIDGraph]["transaction"] = e.Transaction
	}
	return sd
}

// GraphEvent represents graph data being copied or dropped
type GraphEvent struct {
	Actor        string
	Database     string
	Graph        string
	Source       string // set for "copy"
	Operation    string // "copy", "drop"
	Transaction  string
	Success      bool
	ErrorMessage string
}

func (e GraphEvent) MessageID() string {
	return "graph"
}

func (e GraphEvent) Message() string {
	var done, want string
	switch e.Operation {
	case "copy":
		done = fmt.Sprintf("copied %s into %s", e.Source, e.Graph)
		want = fmt.Sprintf("copy %s into %s", e.Source, e.Graph)
	default:
		done = fmt.Sprintf("dropped graph %s", e.Graph)
		want = fmt.Sprintf("drop graph %s", e.Graph)
	}
	if e.Success {
		return e.Actor + " " + done
	}
	return withError(e.Actor+" tried to "+want, e.ErrorMessage)
}

func (e GraphEvent) Severity() Severity {
	if e.Success && e.Operation == "drop" {
		return SeverityNotice
	}
	return severity(e.Success)
}

func (e GraphEvent) Facility() int {
	return FacilityLocal0
}

func (e GraphEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth:   {"user": e.Actor},
		SDIDGraph:  {"database": e.Database, "graph": e.Graph},
		SDIDAction: {"operation": e.Operation, "result": result(e.Success)},
	}
	if e.Source != "" {
		sd[SDIDGraph]["source"] = e.Source
	}
	if e.Transaction != "" {
		sd[SDIDGraph]["transaction"] = e.Transaction
	}
	return sd
}

// TransactionEvent represents a migration transaction ending
type TransactionEvent struct {
	Actor        string
	Database     string
	Transaction  string
	Operation    string // "commit", "rollback"
	Success      bool
	ErrorMessage string
}

func (e TransactionEvent) MessageID() string {
	return "transaction"
}

func (e TransactionEvent) Message() string {
	verb := "committed"
	if e.Operation == "rollback" {
		verb = "rolled back"
	}
	if e.Success {
		return fmt.Sprintf("%s %s transaction %s on %s", e.Actor, verb, e.Transaction, e.Database)
	}
	return withError(fmt.Sprintf("%s tried to %s transaction %s on %s", e.Actor, e.Operation, e.Transaction, e.Database), e.ErrorMessage)
}

func (e TransactionEvent) Severity() Severity {
	return severity(e.Success)
}

func (e TransactionEvent) Facility() int {
	return FacilityLocal0
}

func (e TransactionEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Actor},
		SDIDGraph:  {"database": e.Database, "transaction": e.Transaction},
		SDIDAction: {"operation": e.Operation, "result": result(e.Success)},
	}
}

// OptionsEvent represents database options being changed
type OptionsEvent struct {
	Actor        string
	Database     string
	Options      map[string]any
	Success      bool
	ErrorMessage string
}

func (e OptionsEvent) MessageID() string {
	return "options"
}

func (e OptionsEvent) settings() string {
	parts := make([]string, 0, len(e.Options))
	for _, k := range sortedKeys(e.Options) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Options[k]))
	}
	return strings.Join(parts, " ")
}

func (e OptionsEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s set %s on %s", e.Actor, e.settings(), e.Database)
	}
	return withError(fmt.Sprintf("%s tried to set %s on %s", e.Actor, e.settings(), e.Database), e.ErrorMessage)
}

func (e OptionsEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e OptionsEvent) Facility() int {
	return FacilityLocal0
}

func (e OptionsEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Actor},
		SDIDGraph:  {"database": e.Database, "options": e.settings()},
		SDIDAction: {"operation": "set-options", "result": result(e.Success)},
	}
}
