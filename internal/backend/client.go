package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Default timeouts per operation class. Health checks are cheap and must
// resolve quickly; sync and auth calls may legitimately take longer.
const (
	DefaultHealthTimeout = 2 * time.Second
	DefaultSearchTimeout = 5 * time.Second
	DefaultSyncTimeout   = 30 * time.Second

	// DefaultBaseURL is the local backend origin.
	DefaultBaseURL = "http://localhost:8000"
)

// Client talks to the oslash backend. Every call applies a bounded timeout
// and converts transport failures and non-2xx responses into a *RequestError
// instead of letting raw transport errors propagate.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	healthTimeout time.Duration
	searchTimeout time.Duration
	syncTimeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHealthTimeout overrides the health-check timeout.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) { c.healthTimeout = d }
}

// WithSearchTimeout overrides the search/prewarm/status timeout.
func WithSearchTimeout(d time.Duration) Option {
	return func(c *Client) { c.searchTimeout = d }
}

// WithSyncTimeout overrides the sync and auth timeout.
func WithSyncTimeout(d time.Duration) Option {
	return func(c *Client) { c.syncTimeout = d }
}

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client for the given base URL. An empty base URL
// falls back to DefaultBaseURL.
func NewClient(baseURL string, log zerolog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		log:           log,
		healthTimeout: DefaultHealthTimeout,
		searchTimeout: DefaultSearchTimeout,
		syncTimeout:   DefaultSyncTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}

	return c
}

// CheckHealth probes GET /health. It returns true only for a 200 within the
// health timeout; any other outcome, including a timeout, means offline.
// CheckHealth never returns an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("health check failed")
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Search runs POST /api/v1/search. It fails on non-2xx responses and on
// malformed payloads; it never silently returns partial results.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	body := searchRequest{
		Query:   query,
		Limit:   opts.Limit,
		Sources: opts.Sources,
		Context: opts.Context,
	}

	var out SearchResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/search", body, &out, "search"); err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("query", query).
		Int("results", len(out.Results)).
		Float64("search_time_ms", out.SearchTimeMs).
		Msg("search completed")

	return &out, nil
}

// Prewarm pings POST /api/v1/warm so the backend can load models before the
// full query arrives. Best-effort: callers are expected to ignore the error.
func (c *Client) Prewarm(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	return c.doJSON(ctx, http.MethodPost, "/api/v1/warm", nil, nil, "prewarm")
}

// Status fetches GET /api/v1/status with per-source account details.
func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	var out ServerStatus
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/status", nil, &out, "status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SyncAll triggers POST /api/v1/sync for every connected source.
func (c *Client) SyncAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	return c.doJSON(ctx, http.MethodPost, "/api/v1/sync", nil, nil, "sync")
}

// SyncSource triggers POST /api/v1/sync/{source} for a single source.
func (c *Client) SyncSource(ctx context.Context, source string) error {
	ctx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	return c.doJSON(ctx, http.MethodPost, "/api/v1/sync/"+source, nil, nil, "sync")
}

// ConnectSource asks GET /api/v1/auth/{source}/url for the OAuth URL the
// user should open to connect the source. The flow itself happens on the
// backend; this client only relays the URL.
func (c *Client) ConnectSource(ctx context.Context, source string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	var out authURLResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/"+source+"/url", nil, &out, "connect"); err != nil {
		return "", err
	}
	return out.AuthURL, nil
}

// DisconnectSource issues DELETE /api/v1/auth/{source}.
func (c *Client) DisconnectSource(ctx context.Context, source string) error {
	ctx, cancel := context.WithTimeout(ctx, c.syncTimeout)
	defer cancel()

	return c.doJSON(ctx, http.MethodDelete, "/api/v1/auth/"+source, nil, nil, "disconnect")
}

// doJSON performs one request and decodes the JSON response into out when
// out is non-nil. All failure modes collapse into *RequestError.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, op string) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	return nil
}
