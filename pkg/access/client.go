package access

import "context"

// RoleManager abstracts role and permission administration.
type RoleManager interface {
	// CreateRole creates a role. Returns ErrAlreadyExists if it is already there.
	CreateRole(ctx context.Context, name string) error

	// AssignPermission grants a permission to a role.
	// Returns ErrAlreadyExists if the role already holds it.
	AssignPermission(ctx context.Context, role string, perm Permission) error

	// RemoveRole deletes a role and detaches it from every user.
	RemoveRole(ctx context.Context, name string) error
}

// UserDirectory abstracts user listing and role assignment.
//
// SetUserRoles replaces the complete role set of a user. Callers must read the
// current roles first and write back a merged set, otherwise roles not
// explicitly re-included are lost. The read and the write are two separate
// calls, so a concurrent writer can interleave between them.
type UserDirectory interface {
	// ListUsers returns every user name known to the server.
	ListUsers(ctx context.Context) ([]string, error)

	// ListUserRoles returns the roles currently assigned to a user.
	ListUserRoles(ctx context.Context, user string) ([]string, error)

	// SetUserRoles replaces the roles of a user.
	SetUserRoles(ctx context.Context, user string, roles []string) error
}

// QueryExecutor abstracts transactions and SPARQL execution against one database.
type QueryExecutor interface {
	// BeginTransaction opens a transaction on db.
	BeginTransaction(ctx context.Context, db string) (*Tx, error)

	// CommitTransaction makes every change made inside tx visible.
	CommitTransaction(ctx context.Context, tx *Tx) error

	// RollbackTransaction discards tx.
	RollbackTransaction(ctx context.Context, tx *Tx) error

	// Select runs a read query. A nil tx runs outside any transaction.
	Select(ctx context.Context, db, query string, tx *Tx) (Bindings, error)

	// Update runs an update (ADD, DROP GRAPH, INSERT DATA, DELETE DATA).
	// A nil tx runs outside any transaction and is applied immediately.
	Update(ctx context.Context, db, update string, tx *Tx) error
}

// DatabaseAdmin abstracts database level settings.
type DatabaseAdmin interface {
	// DatabaseOptions returns the current values of the named options.
	DatabaseOptions(ctx context.Context, db string, names ...string) (map[string]any, error)

	// SetDatabaseOptions changes database options.
	SetDatabaseOptions(ctx context.Context, db string, options map[string]any) error

	// Offline takes the database offline.
	Offline(ctx context.Context, db string) error

	// Online brings the database back online.
	Online(ctx context.Context, db string) error
}

// Client is the full capability set of a graph database server.
type Client interface {
	RoleManager
	UserDirectory
	QueryExecutor
	DatabaseAdmin
}
