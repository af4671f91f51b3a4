// Package stardog implements access.Client over the Stardog HTTP API.
//
// Role and user administration goes through /admin, transactions through
// /{db}/transaction, and SPARQL through /{db}/query and /{db}/update (or
// their /{db}/{tx}/... forms inside a transaction). Query results are decoded
// from application/sparql-results+json.
//
// A 409 Conflict is reported as access.ErrAlreadyExists; every other non-2xx
// response becomes an *access.RemoteError carrying the status and body.
package stardog
