// Package naming derives role names and permission resource paths from
// named graph IRIs.
//
// Every function in this package is pure. Given the same database name,
// domain prefix and profile, a graph always maps to the same role name, so
// provisioning and cutover can recompute names instead of storing them.
//
// # Local names
//
// The local name of a graph is its IRI with angle brackets removed, the
// domain prefix stripped, and every '/', '#' and ':' replaced by '_':
//
//	https://nasa.gov/gateway/doors  ->  gateway_doors
//
// # Profiles
//
//   - per-database: ng_<db>_<local>_read, db_<db>_read, ...
//   - global: ng_<local>_read, db_read, ...
//   - grouped: every named graph read permission lands on ng_<db>_passive_read
//
// Distinct graphs can collapse to one local name (a/b and a_b). Registry
// detects this so provisioning fails instead of merging two graphs' grants
// into one role.
package naming
