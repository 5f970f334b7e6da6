package launcher

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

// respondWith runs a stand-in coordinator that answers every search request
// with the given results. Returning a nil slice with empty=false simulates a
// coordinator that never replies.
func respondWith(t *testing.T, bus *messaging.Bus, results []backend.SearchResult, reply bool) chan messaging.Request {
	t.Helper()
	seen := make(chan messaging.Request, 8)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	go func() {
		for {
			select {
			case req := <-bus.Requests():
				seen <- req
				if !reply {
					continue
				}
				bus.Deliver(messaging.Response{
					Kind:          messaging.KindSearchResults,
					CorrelationID: req.CorrelationID,
					Origin:        req.Origin,
					Query:         req.Query,
					Results:       results,
				})
			case <-done:
				return
			}
		}
	}()
	return seen
}

func newInterceptorHarness(t *testing.T, results []backend.SearchResult, reply bool) (*Interceptor, chan messaging.Request) {
	t.Helper()
	bus := messaging.NewBus()
	conn := messaging.NewConn(bus, "launcher")
	t.Cleanup(conn.Close)
	seen := respondWith(t, bus, results, reply)
	return NewInterceptor(parser.New("o/"), conn, 0, zerolog.Nop()), seen
}

func TestInterceptRedirectsTriggeredSearchNavigation(t *testing.T) {
	ic, seen := newInterceptorHarness(t, []backend.SearchResult{
		{ID: "doc-1", Title: "2025 Roadmap", URL: "https://docs.google.com/document/d/abc", Source: "gdrive"},
	}, true)

	redirect, ok := ic.Intercept(context.Background(), "https://www.google.com/search?q=o%2Froadmap+doc")
	require.True(t, ok)
	assert.Equal(t, "https://docs.google.com/document/d/abc", redirect)

	req := <-seen
	assert.Equal(t, messaging.KindSearchQuery, req.Kind)
	assert.Equal(t, "roadmap doc", req.Query)
	assert.Equal(t, 1, req.Limit)
}

func TestInterceptKeepsScopePrefixForScopedTerms(t *testing.T) {
	ic, seen := newInterceptorHarness(t, []backend.SearchResult{
		{ID: "m-1", Title: "Travel receipts", URL: "https://mail.google.com/mail/u/0/#inbox/xyz"},
	}, true)

	_, ok := ic.Intercept(context.Background(), "https://duckduckgo.com/?q=o%2Fmail+travel+receipts")
	require.True(t, ok)

	req := <-seen
	assert.Equal(t, "o/mail travel receipts", req.Query)
}

func TestInterceptFallsThrough(t *testing.T) {
	tests := []struct {
		name   string
		navURL string
	}{
		{"untriggered search", "https://www.google.com/search?q=weather+tomorrow"},
		{"unknown host", "https://example.com/search?q=o%2F+roadmap"},
		{"plain navigation", "https://github.com/charmbracelet/bubbletea"},
		{"empty query param", "https://www.bing.com/search?q="},
		{"bare trigger", "https://www.google.com/search?q=o%2F"},
		{"unparseable url", "://notaurl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic, _ := newInterceptorHarness(t, nil, true)
			_, ok := ic.Intercept(context.Background(), tt.navURL)
			assert.False(t, ok)
		})
	}
}

func TestInterceptFallsThroughOnEmptyResults(t *testing.T) {
	ic, _ := newInterceptorHarness(t, nil, true)
	_, ok := ic.Intercept(context.Background(), "https://www.google.com/search?q=o%2F+nothing+here")
	assert.False(t, ok)
}

func TestInterceptFallsThroughOnResultWithoutURL(t *testing.T) {
	ic, _ := newInterceptorHarness(t, []backend.SearchResult{
		{ID: "c-1", Title: "Jane Doe", Source: "gpeople"},
	}, true)
	_, ok := ic.Intercept(context.Background(), "https://www.google.com/search?q=o%2F+jane")
	assert.False(t, ok)
}

func TestInterceptFallsThroughWhenCoordinatorSilent(t *testing.T) {
	bus := messaging.NewBus()
	conn := messaging.NewConn(bus, "launcher")
	t.Cleanup(conn.Close)
	respondWith(t, bus, nil, false)
	ic := NewInterceptor(parser.New("o/"), conn, 50*time.Millisecond, zerolog.Nop())

	start := time.Now()
	_, ok := ic.Intercept(context.Background(), "https://www.google.com/search?q=o%2F+roadmap+doc")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewInterceptorTimeout(t *testing.T) {
	bus := messaging.NewBus()
	conn := messaging.NewConn(bus, "launcher")
	t.Cleanup(conn.Close)

	ic := NewInterceptor(parser.New("o/"), conn, 750*time.Millisecond, zerolog.Nop())
	assert.Equal(t, 750*time.Millisecond, ic.timeout)

	ic = NewInterceptor(parser.New("o/"), conn, 0, zerolog.Nop())
	assert.Equal(t, DefaultInterceptTimeout, ic.timeout)
}
