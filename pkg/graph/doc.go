// Package graph issues the SPARQL queries and updates ngsec runs against
// named graphs and their aliases.
//
// A Store is bound to one database. Operations that accept an *access.Tx run
// inside that transaction; passing nil applies them immediately.
//
//	store := graph.NewStore(client, "decomp")
//	tx, err := store.Begin(ctx)
//	n, err := store.CountTriples(ctx, tx, "<urn:GLEIF>")
//
// Aliases live as triples in the reserved alias graph:
//
//	GRAPH <tag:stardog:api:graph:aliases> { :a-tosc <tag:stardog:api:graph:alias> <urn:GLEIF> }
//
// Moving an alias therefore takes an insert and a delete; there is no atomic
// rebind outside a transaction.
package graph
