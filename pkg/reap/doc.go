// Package reap drops the stale snapshots of an aliased graph.
//
// Snapshot graphs are named <base>_TS_<millis>. Once an alias points at the
// newest snapshot, every other graph whose name contains the base is no
// longer reachable through the alias and is dropped. Drops happen one at a
// time outside any transaction; a failure stops the sweep and graphs already
// dropped stay dropped.
package reap
