// Package audit records security-relevant mutations made by ngsec.
//
// Every role creation, permission grant, user role rewrite, role removal,
// alias move, graph drop, database option change and migration transaction
// outcome is written as an RFC5424 syslog line and, when AUDIT_DATABASE_URL is
// set, persisted to the messages table.
//
// # Event Types
//
//   - RoleEvent: role created or removed
//   - PermissionEvent: permission granted to a role
//   - UserRolesEvent: role set of a user rewritten
//   - AliasEvent: alias bound to or unbound from a graph
//   - GraphEvent: graph copied into another or dropped
//   - TransactionEvent: migration transaction committed or rolled back
//   - OptionsEvent: database options changed
//
// # Usage
//
//	audit.Log(audit.RoleEvent{Actor: "admin", Operation: "create", Role: "db_decomp_read", Success: true})
//
// Set NGSEC_AUDIT_ENABLED=false to turn the trail off.
package audit
