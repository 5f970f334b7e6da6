// Package launcher provides the alternate trigger sources: a quick-launch
// text box and an address-bar navigation interceptor. Both normalize into
// the same search request contract as the page watcher and only ever talk
// to the backend through the coordinator.
package launcher

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

// DefaultInterceptTimeout bounds the search-and-redirect decision. A slow
// backend must never hold up the user's navigation.
const DefaultInterceptTimeout = 2 * time.Second

// searchEngineParams maps known search-engine hosts to the query parameter
// of their results URL template.
var searchEngineParams = map[string]string{
	"www.google.com":     "q",
	"google.com":         "q",
	"www.bing.com":       "q",
	"bing.com":           "q",
	"duckduckgo.com":     "q",
	"www.duckduckgo.com": "q",
	"search.brave.com":   "q",
}

// Interceptor inspects committed navigations. When a navigation targets a
// known search engine and the query starts with the trigger token, the
// search is answered locally and the navigation redirected to the top
// result instead of reaching the external engine.
type Interceptor struct {
	parser  *parser.Parser
	conn    *messaging.Conn
	timeout time.Duration
	log     zerolog.Logger
}

// NewInterceptor creates an Interceptor routing through conn. A timeout of
// zero or less falls back to DefaultInterceptTimeout.
func NewInterceptor(p *parser.Parser, conn *messaging.Conn, timeout time.Duration, log zerolog.Logger) *Interceptor {
	if timeout <= 0 {
		timeout = DefaultInterceptTimeout
	}
	return &Interceptor{
		parser:  p,
		conn:    conn,
		timeout: timeout,
		log:     log,
	}
}

// Intercept returns the redirect URL for a navigation that should be
// overridden. Every failure mode (no trigger, offline backend, no result)
// reports ok=false so the original navigation proceeds unmodified.
func (i *Interceptor) Intercept(ctx context.Context, navURL string) (string, bool) {
	term, ok := i.extractTerm(navURL)
	if !ok {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	resp, err := i.conn.Do(ctx, messaging.NewSearchRequest(i.conn.Origin("navigation"), term, 1))
	if err != nil {
		i.log.Debug().Err(err).Msg("navigation override skipped")
		return "", false
	}
	if resp.Kind != messaging.KindSearchResults || len(resp.Results) == 0 {
		return "", false
	}

	top := resp.Results[0]
	if top.URL == "" {
		return "", false
	}

	i.log.Info().Str("term", term).Str("url", top.URL).Msg("navigation redirected to local result")
	return top.URL, true
}

// extractTerm pulls the search term out of a search-engine URL whose query
// parameter begins with the trigger token. Scoped terms keep their trigger
// prefix so the coordinator can narrow sources from it.
func (i *Interceptor) extractTerm(navURL string) (string, bool) {
	u, err := url.Parse(navURL)
	if err != nil {
		return "", false
	}

	param, known := searchEngineParams[strings.ToLower(u.Host)]
	if !known {
		return "", false
	}

	value := u.Query().Get(param)
	if value == "" {
		return "", false
	}

	term, triggered := i.parser.StripTrigger(value)
	if !triggered || term == "" {
		return "", false
	}

	if i.parser.Parse(value).Scoped() {
		return value, true
	}
	return term, true
}
