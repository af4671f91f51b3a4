package stardog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/decomp/ngsec/pkg/access"
)

const sparqlResultsJSON = "application/sparql-results+json"

func (c *Client) BeginTransaction(ctx context.Context, db string) (*access.Tx, error) {
	body, err := c.do(ctx, request{
		op: "begin transaction", resource: db,
		method: http.MethodPost, path: []string{db, "transaction", "begin"},
		accept: "text/plain",
	})
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(string(body))
	if id == "" {
		return nil, access.ErrNoTransaction
	}
	return &access.Tx{DB: db, ID: id}, nil
}

func (c *Client) CommitTransaction(ctx context.Context, tx *access.Tx) error {
	return c.endTransaction(ctx, "commit", tx)
}

func (c *Client) RollbackTransaction(ctx context.Context, tx *access.Tx) error {
	return c.endTransaction(ctx, "rollback", tx)
}

func (c *Client) endTransaction(ctx context.Context, verb string, tx *access.Tx) error {
	if !access.InTx(tx) {
		return access.ErrNoTransaction
	}
	_, err := c.do(ctx, request{
		op: verb + " transaction", resource: tx.ID,
		method: http.MethodPost, path: []string{tx.DB, "transaction", verb, tx.ID},
	})
	return err
}

// sparqlPath routes a query or update into tx when one is given.
func sparqlPath(db, kind string, tx *access.Tx) []string {
	if access.InTx(tx) {
		return []string{db, tx.ID, kind}
	}
	return []string{db, kind}
}

type sparqlResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings access.Bindings `json:"bindings"`
	} `json:"results"`
}

func (c *Client) Select(ctx context.Context, db, query string, tx *access.Tx) (access.Bindings, error) {
	body, err := c.do(ctx, request{
		op: "query", resource: db,
		method: http.MethodPost, path: sparqlPath(db, "query", tx),
		body:   strings.NewReader(url.Values{"query": {query}}.Encode()),
		ctype:  "application/x-www-form-urlencoded",
		accept: sparqlResultsJSON,
	})
	if err != nil {
		return nil, err
	}
	var res sparqlResults
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("stardog: decode query results: %w", err)
	}
	return res.Results.Bindings, nil
}

func (c *Client) Update(ctx context.Context, db, update string, tx *access.Tx) error {
	_, err := c.do(ctx, request{
		op: "update", resource: db,
		method: http.MethodPost, path: sparqlPath(db, "update", tx),
		body:  strings.NewReader(url.Values{"query": {update}}.Encode()),
		ctype: "application/x-www-form-urlencoded",
	})
	return err
}
