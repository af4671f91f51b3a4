// Package cutover moves an alias and its reader population from one named
// graph to a newer one that already holds the data.
//
// The alias is bound to the new graph before it is unbound from the old one,
// and every user receives the new read role before the old role is removed.
// Users are rewritten one at a time, so the population is not switched
// atomically, but no user is ever left without a valid read role. Re-running
// a cutover finishes one that stopped part way.
package cutover
