// Package coordinator implements the message routing hub between the page
// watcher, the alternate trigger sources, the popup and the backend client.
// It is the only component that holds cross-request state: server health and
// the pending-request registry live here and nowhere else; every other
// component can only infer server availability from the responses it gets.
package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

// OfflineMessage is the user-facing reason attached to short-circuited
// requests while the backend is unreachable.
const OfflineMessage = "Server offline. Start the oslash backend to search."

// Defaults for the routing loop.
const (
	DefaultHealthInterval = 30 * time.Second
	DefaultPendingTTL     = 10 * time.Second
	DefaultSearchLimit    = 5
)

// Backend abstracts the backend client so the coordinator can be tested
// against a fake.
type Backend interface {
	CheckHealth(ctx context.Context) bool
	Search(ctx context.Context, query string, opts backend.SearchOptions) (*backend.SearchResponse, error)
	Prewarm(ctx context.Context) error
	Status(ctx context.Context) (*backend.ServerStatus, error)
	SyncAll(ctx context.Context) error
	SyncSource(ctx context.Context, source string) error
	ConnectSource(ctx context.Context, source string) (string, error)
	DisconnectSource(ctx context.Context, source string) error
}

// BadgeSetter receives health transitions as a visible side channel, e.g.
// a tray icon or status-bar badge. Only the coordinator calls it.
type BadgeSetter interface {
	SetBadge(online bool)
}

// NopBadge discards badge updates.
type NopBadge struct{}

// SetBadge implements BadgeSetter.
func (NopBadge) SetBadge(bool) {}

// healthState is the process-wide server health singleton. Owned and
// mutated exclusively by the run loop.
type healthState struct {
	online        bool
	known         bool
	lastCheckedAt time.Time
}

// pendingRequest tracks an issued request until its reply is delivered or
// it expires.
type pendingRequest struct {
	correlationID string
	origin        messaging.Origin
	query         string
	issuedAt      time.Time
	timeoutAt     time.Time
}

// completion is posted by a backend-call goroutine back into the run loop.
type completion struct {
	correlationID string
	resp          messaging.Response
	transportErr  bool
}

// Options tune a Coordinator.
type Options struct {
	HealthInterval time.Duration
	PendingTTL     time.Duration
	DefaultLimit   int
	Badge          BadgeSetter
}

// Coordinator routes every inbound request by kind, correlates replies back
// to their origin and short-circuits work while the backend is down.
type Coordinator struct {
	bus     *messaging.Bus
	backend Backend
	parser  *parser.Parser
	badge   BadgeSetter
	log     zerolog.Logger

	healthInterval time.Duration
	pendingTTL     time.Duration
	defaultLimit   int
	prewarmLimiter *rate.Limiter

	// Loop-owned state. Never touched outside Run's goroutine.
	health      healthState
	pending     map[string]pendingRequest
	completions chan completion
}

// New creates a Coordinator. Zero option fields fall back to defaults.
func New(bus *messaging.Bus, be Backend, p *parser.Parser, log zerolog.Logger, opts Options) *Coordinator {
	if opts.HealthInterval <= 0 {
		opts.HealthInterval = DefaultHealthInterval
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultSearchLimit
	}
	if opts.Badge == nil {
		opts.Badge = NopBadge{}
	}

	return &Coordinator{
		bus:            bus,
		backend:        be,
		parser:         p,
		badge:          opts.Badge,
		log:            log,
		healthInterval: opts.HealthInterval,
		pendingTTL:     opts.PendingTTL,
		defaultLimit:   opts.DefaultLimit,
		prewarmLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
		pending:        make(map[string]pendingRequest),
		completions:    make(chan completion, 64),
	}
}

// Run executes the routing loop until the context is canceled. The loop is
// single-threaded and cooperative: backend calls run in short-lived
// goroutines that post completions back here, so health state and the
// pending registry are only ever mutated from this goroutine.
func (c *Coordinator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.healthInterval)
	defer ticker.Stop()

	c.refreshHealth(ctx)

	for {
		select {
		case req := <-c.bus.Requests():
			c.handle(ctx, req)
		case comp := <-c.completions:
			c.complete(comp)
		case <-ticker.C:
			c.refreshHealth(ctx)
			c.expirePending()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handle dispatches one inbound request by kind.
func (c *Coordinator) handle(ctx context.Context, req messaging.Request) {
	if !req.Kind.IsRequest() {
		c.log.Warn().Str("kind", string(req.Kind)).Msg("unknown message kind, ignoring")
		return
	}

	switch req.Kind {
	case messaging.KindSearchQuery:
		c.handleSearch(ctx, req)
	case messaging.KindPrewarm:
		c.handlePrewarm(ctx)
	case messaging.KindCheckServer:
		c.refreshHealth(ctx)
		c.bus.Deliver(messaging.Response{
			Kind:          messaging.KindAck,
			CorrelationID: req.CorrelationID,
			Origin:        req.Origin,
			Online:        c.health.online,
		})
	case messaging.KindGetStatus:
		c.dispatchAsync(ctx, req, func(callCtx context.Context) (messaging.Response, error) {
			status, err := c.backend.Status(callCtx)
			if err != nil {
				return messaging.Response{}, err
			}
			return messaging.Response{Kind: messaging.KindAck, Status: status, Online: true}, nil
		})
	case messaging.KindSyncAll:
		c.dispatchAsync(ctx, req, func(callCtx context.Context) (messaging.Response, error) {
			if err := c.backend.SyncAll(callCtx); err != nil {
				return messaging.Response{}, err
			}
			return messaging.Response{Kind: messaging.KindAck}, nil
		})
	case messaging.KindSyncSource:
		source := req.Source
		c.dispatchAsync(ctx, req, func(callCtx context.Context) (messaging.Response, error) {
			if err := c.backend.SyncSource(callCtx, source); err != nil {
				return messaging.Response{}, err
			}
			return messaging.Response{Kind: messaging.KindAck}, nil
		})
	case messaging.KindConnectSource:
		source := req.Source
		c.dispatchAsync(ctx, req, func(callCtx context.Context) (messaging.Response, error) {
			authURL, err := c.backend.ConnectSource(callCtx, source)
			if err != nil {
				return messaging.Response{}, err
			}
			return messaging.Response{Kind: messaging.KindAck, AuthURL: authURL}, nil
		})
	case messaging.KindDisconnectSource:
		source := req.Source
		c.dispatchAsync(ctx, req, func(callCtx context.Context) (messaging.Response, error) {
			if err := c.backend.DisconnectSource(callCtx, source); err != nil {
				return messaging.Response{}, err
			}
			return messaging.Response{Kind: messaging.KindAck}, nil
		})
	case messaging.KindHideOverlay:
		// Relayed back so the overlay in the origin sandbox runs its one
		// hide path.
		c.bus.Deliver(messaging.Response{
			Kind:   messaging.KindHideOverlay,
			Origin: req.Origin,
		})
	}
}

// handleSearch routes a SEARCH_QUERY. While offline it short-circuits to a
// SEARCH_ERROR without touching the backend so callers do not pile retries
// onto a dead server.
func (c *Coordinator) handleSearch(ctx context.Context, req messaging.Request) {
	c.ensureFreshHealth(ctx)

	if !c.health.online {
		c.bus.Deliver(messaging.Response{
			Kind:          messaging.KindSearchError,
			CorrelationID: req.CorrelationID,
			Origin:        req.Origin,
			Query:         req.Query,
			Err:           OfflineMessage,
		})
		return
	}

	c.bus.Deliver(messaging.Response{
		Kind:          messaging.KindShowLoading,
		CorrelationID: req.CorrelationID,
		Origin:        req.Origin,
		Query:         req.Query,
	})

	parsed := c.parser.Parse(req.Query)
	opts := backend.SearchOptions{Limit: req.Limit}
	if opts.Limit <= 0 {
		opts.Limit = c.defaultLimit
	}
	if parsed.Scoped() {
		opts.Sources = []string{string(parsed.Scope)}
	}

	c.track(req)
	go func() {
		resp, err := c.backend.Search(ctx, parsed.Query, opts)
		if err != nil {
			c.completions <- completion{
				correlationID: req.CorrelationID,
				transportErr:  isTransport(err),
				resp: messaging.Response{
					Kind:          messaging.KindSearchError,
					CorrelationID: req.CorrelationID,
					Origin:        req.Origin,
					Query:         req.Query,
					Err:           userFacingReason(err),
				},
			}
			return
		}
		c.completions <- completion{
			correlationID: req.CorrelationID,
			resp: messaging.Response{
				Kind:          messaging.KindSearchResults,
				CorrelationID: req.CorrelationID,
				Origin:        req.Origin,
				Query:         req.Query,
				Results:       resp.Results,
				SearchTimeMs:  resp.SearchTimeMs,
			},
		}
	}()
}

// handlePrewarm fires a best-effort warm call, rate limited so a user
// repeatedly typing the trigger cannot hammer the backend.
func (c *Coordinator) handlePrewarm(ctx context.Context) {
	c.ensureFreshHealth(ctx)

	if !c.health.online || !c.prewarmLimiter.Allow() {
		return
	}

	go func() {
		if err := c.backend.Prewarm(ctx); err != nil {
			c.log.Debug().Err(err).Msg("prewarm failed")
		}
	}()
}

// dispatchAsync runs one backend call off-loop and posts the completion
// back for correlated delivery. The call runs under the loop context so
// shutdown cancels in-flight work.
func (c *Coordinator) dispatchAsync(ctx context.Context, req messaging.Request, call func(context.Context) (messaging.Response, error)) {
	c.track(req)
	go func() {
		resp, err := call(ctx)
		if err != nil {
			resp = messaging.Response{
				Kind: messaging.KindSearchError,
				Err:  userFacingReason(err),
			}
		}
		resp.CorrelationID = req.CorrelationID
		resp.Origin = req.Origin
		c.completions <- completion{
			correlationID: req.CorrelationID,
			resp:          resp,
			transportErr:  err != nil && isTransport(err),
		}
	}()
}

// track registers a pending request for reply correlation and expiry.
func (c *Coordinator) track(req messaging.Request) {
	now := time.Now()
	c.pending[req.CorrelationID] = pendingRequest{
		correlationID: req.CorrelationID,
		origin:        req.Origin,
		query:         req.Query,
		issuedAt:      now,
		timeoutAt:     now.Add(c.pendingTTL),
	}
}

// complete matches a backend completion against the pending registry. A
// completion whose entry was already expired is dropped silently.
func (c *Coordinator) complete(comp completion) {
	if _, ok := c.pending[comp.correlationID]; !ok {
		c.log.Debug().Str("correlation_id", comp.correlationID).Msg("dropping late response")
		return
	}
	delete(c.pending, comp.correlationID)

	if comp.transportErr {
		c.setOnline(false)
	}

	c.bus.Deliver(comp.resp)
}

// expirePending garbage-collects entries past their deadline to bound
// memory. Their eventual completions will be dropped in complete.
func (c *Coordinator) expirePending() {
	now := time.Now()
	for id, p := range c.pending {
		if now.After(p.timeoutAt) {
			delete(c.pending, id)
		}
	}
}

// ensureFreshHealth runs an eager check when health is unknown or older
// than the check interval.
func (c *Coordinator) ensureFreshHealth(ctx context.Context) {
	if c.health.known && time.Since(c.health.lastCheckedAt) < c.healthInterval {
		return
	}
	c.refreshHealth(ctx)
}

// refreshHealth probes the backend and updates the badge on transitions.
func (c *Coordinator) refreshHealth(ctx context.Context) {
	online := c.backend.CheckHealth(ctx)
	c.health.lastCheckedAt = time.Now()

	changed := !c.health.known || c.health.online != online
	c.health.known = true
	c.health.online = online

	if changed {
		c.badge.SetBadge(online)
		c.log.Info().Bool("online", online).Msg("backend health changed")
	}
}

// setOnline force-downgrades health, typically after a transport failure
// observed mid-request.
func (c *Coordinator) setOnline(online bool) {
	if c.health.known && c.health.online == online {
		return
	}
	c.health.known = true
	c.health.online = online
	c.health.lastCheckedAt = time.Now()
	c.badge.SetBadge(online)
}

// isTransport reports whether the error means the server never answered.
func isTransport(err error) bool {
	var reqErr *backend.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.IsTransport()
	}
	return false
}

// userFacingReason maps backend failures to a calm inline message. Raw
// transport and parse errors stay in the logs.
func userFacingReason(err error) string {
	if isTransport(err) {
		return OfflineMessage
	}
	return "Search failed. Try again in a moment."
}
