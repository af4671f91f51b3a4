// Package provision builds the role and permission lattice of a database.
//
// A run walks five stages in order and stops at the first failure:
//
//   - db-roles: database read and update roles
//   - default-graph-roles: default graph read and update roles
//   - named-graph-roles: one read role per discovered named graph under the domain
//   - service-write-roles: the write role of the service graph
//   - user-roles: every non-privileged user gains every read role, and the
//     service accounts gain their write roles
//
// Creation is idempotent: roles and permissions that already exist count as
// success, so running twice converges on the same state. Nothing applied by an
// earlier stage is undone when a later stage fails.
package provision
