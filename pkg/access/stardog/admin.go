package stardog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DatabaseOptions reads options by sending their names to the options
// endpoint, which answers with their current values.
func (c *Client) DatabaseOptions(ctx context.Context, db string, names ...string) (map[string]any, error) {
	query := make(map[string]any, len(names))
	for _, name := range names {
		query[name] = ""
	}
	body, err := jsonBody(query)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, request{
		op: "get options", resource: db,
		method: http.MethodPut, path: []string{"admin", "databases", db, "options"},
		body: body, ctype: "application/json", accept: "application/json",
	})
	if err != nil {
		return nil, err
	}
	options := map[string]any{}
	if err := json.Unmarshal(resp, &options); err != nil {
		return nil, fmt.Errorf("stardog: decode options of %s: %w", db, err)
	}
	return options, nil
}

func (c *Client) SetDatabaseOptions(ctx context.Context, db string, options map[string]any) error {
	body, err := jsonBody(options)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op: "set options", resource: db,
		method: http.MethodPost, path: []string{"admin", "databases", db, "options"},
		body: body, ctype: "application/json",
	})
	return err
}

func (c *Client) Offline(ctx context.Context, db string) error {
	_, err := c.do(ctx, request{
		op: "offline", resource: db,
		method: http.MethodPut, path: []string{"admin", "databases", db, "offline"},
	})
	return err
}

func (c *Client) Online(ctx context.Context, db string) error {
	_, err := c.do(ctx, request{
		op: "online", resource: db,
		method: http.MethodPut, path: []string{"admin", "databases", db, "online"},
	})
	return err
}

// Alive checks that the server answers authenticated requests.
func (c *Client) Alive(ctx context.Context) error {
	_, err := c.do(ctx, request{
		op: "alive", resource: c.base.Host,
		method: http.MethodGet, path: []string{"admin", "alive"},
	})
	return err
}
