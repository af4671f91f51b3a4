// Package config loads ngsecctl configuration.
//
// # Configuration Sources
//
// Values are resolved in order, later sources winning:
//
//   - Built-in defaults
//   - The YAML file $NGSEC_CONFIG_PATH/ngsec.yml (default /etc/ngsec)
//   - Environment variables
//
// The source of every attribute is recorded and shown by
// `ngsecctl configuration show`.
//
// # Key Configuration Options
//
//   - DATABASE_URL, DATABASE_USERNAME, DATABASE_PASSWORD: server access
//   - DATABASE_TOKEN: bearer token used instead of the password
//   - NG_DBNAME, NG_DOMAIN: database and graph domain prefix
//   - NG_NAMING_PROFILE: per-database, global or grouped role names
//   - NG_ALIAS, NG_OLD, NG_NEW: workflow defaults
//   - NGSEC_LOG_LEVEL: logging verbosity
//   - LEDGER_DATABASE_URL, AUDIT_DATABASE_URL: optional Postgres stores
package config
