// Package access defines the capability surface ngsec needs from the graph
// database server.
//
// The workflows in this module never talk HTTP directly. They depend on the
// small interfaces declared here, which lets the provisioner, the migration
// orchestrator and the cutover run against the Stardog HTTP client in
// production and against an in-memory fake in tests.
//
// # Interfaces
//
//   - RoleManager: role creation, permission grants, role removal
//   - UserDirectory: user listing and full-replace role assignment
//   - QueryExecutor: transactions and SPARQL query/update execution
//   - DatabaseAdmin: database options and online/offline switching
//
// # Errors
//
// Idempotent operations report ErrAlreadyExists when the server already holds
// the requested state. Callers treat it as success. Every other server or
// transport failure is returned as a *RemoteError naming the operation and
// the resource it targeted.
package access
