package stardog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/decomp/ngsec/pkg/access"
)

// ErrTokenExpired is returned before any request is sent when the configured
// bearer token has already expired.
var ErrTokenExpired = errors.New("stardog: bearer token expired")

// Config holds connection settings.
type Config struct {
	// Endpoint is the server base URL, e.g. http://localhost:5820.
	Endpoint string
	Username string
	Password string
	// Token is a bearer token. When set it is used instead of basic auth.
	Token string
	// Timeout bounds every request. Zero means 30s.
	Timeout time.Duration
}

// Client talks to one Stardog server.
type Client struct {
	base       *url.URL
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

var _ access.Client = (*Client)(nil)

// New validates cfg and returns a client. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("stardog: invalid endpoint %q: %w", cfg.Endpoint, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("stardog: endpoint %q must be an absolute URL", cfg.Endpoint)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:       base,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.Named("stardog"),
		now:        time.Now,
	}, nil
}

// TokenExpiry returns the expiry of the configured bearer token. The token is
// not verified; the server does that.
func (c *Client) TokenExpiry() (time.Time, bool, error) {
	if c.cfg.Token == "" {
		return time.Time{}, false, nil
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.cfg.Token, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("stardog: parse bearer token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}

func (c *Client) authorize(req *http.Request) error {
	if c.cfg.Token == "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
		return nil
	}
	exp, ok, err := c.TokenExpiry()
	if err != nil {
		return err
	}
	if ok && !c.now().Before(exp) {
		return ErrTokenExpired
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	return nil
}

// request describes one API call.
type request struct {
	op       string
	resource string
	method   string
	path     []string
	query    url.Values
	body     io.Reader
	ctype    string
	accept   string
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// do sends r and returns the response body of a 2xx response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	u := *c.base
	segments := make([]string, 0, len(r.path))
	for _, p := range r.path {
		segments = append(segments, url.PathEscape(p))
	}
	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(segments, "/")
	if r.query != nil {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return nil, &access.RemoteError{Op: r.op, Resource: r.resource, Err: err}
	}
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &access.RemoteError{Op: r.op, Resource: r.resource, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &access.RemoteError{Op: r.op, Resource: r.resource, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("request",
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%s %s: %w", r.op, r.resource, access.ErrAlreadyExists)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &access.RemoteError{
			Op:         r.op,
			Resource:   r.resource,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

// errorMessage extracts the message of a Stardog error body, falling back to
// the raw text.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}
