// Command ngsecctl provisions named graph security on a Stardog database and
// migrates data and access between named graphs.
//
// # Quick Start
//
//	# Enable graph aliases and named graph security
//	ngsecctl settings apply
//
//	# Create database, default graph and named graph roles and grant them
//	ngsecctl provision
//
//	# Copy a graph into another inside one transaction and move its aliases
//	ngsecctl migrate '<https://nasa.gov/ontology>' '<https://nasa.gov/newNg>'
//
//	# Point an alias and its readers at a newer snapshot
//	ngsecctl cutover --alias :a-tosc --old <old> --new <new>
//
//	# Drop the snapshots an alias no longer points to
//	ngsecctl reap :a-tosc
//
// # Environment Variables
//
//   - DATABASE_URL: Stardog server URL (default: http://localhost:5820)
//   - DATABASE_USERNAME, DATABASE_PASSWORD: basic auth credentials
//   - DATABASE_TOKEN: bearer token used instead of basic auth
//   - NG_DBNAME: database to operate on
//   - NG_DOMAIN: graph IRI prefix roles are derived from
//   - NG_NAMING_PROFILE: per-database, global or grouped
//   - NG_ALIAS, NG_OLD, NG_NEW: defaults for cutover, reap and graph next
//   - NGSEC_LOG_LEVEL: Log level (debug, info, warn, error)
//   - LEDGER_DATABASE_URL: PostgreSQL database recording workflow runs
//   - AUDIT_DATABASE_URL: PostgreSQL database persisting audit messages
package main
