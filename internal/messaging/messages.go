// Package messaging defines the cross-sandbox message contract and a
// channel-backed bus. Sandboxes share no memory; every interaction between
// the page watcher, the coordinator and the popup travels through here as a
// tagged message. Delivery is FIFO per sender/receiver pair and nothing more.
package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
)

// Kind tags a message. Request kinds flow into the coordinator; response
// kinds flow back out to the originating context.
type Kind string

const (
	// Request kinds.
	KindSearchQuery      Kind = "SEARCH_QUERY"
	KindPrewarm          Kind = "PREWARM"
	KindCheckServer      Kind = "CHECK_SERVER"
	KindGetStatus        Kind = "GET_STATUS"
	KindSyncAll          Kind = "SYNC_ALL"
	KindSyncSource       Kind = "SYNC_SOURCE"
	KindConnectSource    Kind = "CONNECT_SOURCE"
	KindDisconnectSource Kind = "DISCONNECT_SOURCE"
	KindHideOverlay      Kind = "HIDE_OVERLAY"

	// Response kinds.
	KindSearchResults Kind = "SEARCH_RESULTS"
	KindSearchError   Kind = "SEARCH_ERROR"
	KindShowLoading   Kind = "SHOW_LOADING"
	KindAck           Kind = "ACK"
)

// replyExpectations declares, per request kind, whether the coordinator
// addresses a correlated reply to the sender. Fire-and-forget kinds carry no
// reply and need no origin bookkeeping.
var replyExpectations = map[Kind]bool{
	KindSearchQuery:      true,
	KindCheckServer:      true,
	KindGetStatus:        true,
	KindSyncAll:          true,
	KindSyncSource:       true,
	KindConnectSource:    true,
	KindDisconnectSource: true,
	KindPrewarm:          false,
	KindHideOverlay:      false,
}

// ExpectsReply reports whether a request of this kind receives a correlated
// response. Unknown kinds expect none.
func (k Kind) ExpectsReply() bool {
	return replyExpectations[k]
}

// IsRequest reports whether the kind is a valid inbound request kind.
func (k Kind) IsRequest() bool {
	_, ok := replyExpectations[k]
	return ok
}

// Origin identifies where a request came from so replies can be addressed.
// Context names the sandbox ("page", "launcher", "popup", ...); Target
// optionally names the input element or tab within it.
type Origin struct {
	Context string
	Target  string
}

// Request is a message sent to the coordinator.
type Request struct {
	Kind          Kind
	CorrelationID string
	Origin        Origin

	// Query and Limit apply to SEARCH_QUERY.
	Query string
	Limit int
	// Source applies to SYNC_SOURCE, CONNECT_SOURCE and DISCONNECT_SOURCE.
	Source string

	IssuedAt time.Time
}

// Response is a message the coordinator addresses back to an origin.
type Response struct {
	Kind          Kind
	CorrelationID string
	Origin        Origin

	// Query echoes the originating query so consumers can run staleness
	// checks without coordinator state.
	Query        string
	Results      []backend.SearchResult
	SearchTimeMs float64
	Status       *backend.ServerStatus
	AuthURL      string
	Online       bool
	// Err carries a user-facing failure reason for SEARCH_ERROR / ACK.
	Err string
}

// NewRequest builds a request with a fresh correlation ID.
func NewRequest(kind Kind, origin Origin) Request {
	return Request{
		Kind:          kind,
		CorrelationID: uuid.NewString(),
		Origin:        origin,
		IssuedAt:      time.Now(),
	}
}

// NewSearchRequest builds a SEARCH_QUERY request.
func NewSearchRequest(origin Origin, query string, limit int) Request {
	req := NewRequest(KindSearchQuery, origin)
	req.Query = query
	req.Limit = limit
	return req
}

// NewSourceRequest builds a request that targets a single source.
func NewSourceRequest(kind Kind, origin Origin, source string) Request {
	req := NewRequest(kind, origin)
	req.Source = source
	return req
}
