// Package fake provides an in-memory graph database server that satisfies
// access.Client.
//
// It keeps roles, permissions, users and graph triples in process, stages
// transactional work until commit, and understands the query shapes issued by
// package graph. Failures can be injected per operation to exercise partial
// failure paths:
//
//	srv := fake.NewServer("decomp")
//	srv.AddGraph("decomp", "urn:GLEIF", 100)
//	srv.Fail("SetUserRoles", "bob", errors.New("boom"))
package fake
