package messaging

import (
	"context"
	"fmt"
	"sync"
)

// Buffer sizes are generous relative to traffic; a full channel means the
// consumer is gone or wedged, and the message is dropped rather than
// blocking the sender's event loop.
const (
	requestBuffer  = 256
	responseBuffer = 64
)

// Bus routes requests to the coordinator and responses back to subscribed
// contexts. It is the only cross-sandbox channel in the process.
type Bus struct {
	mu          sync.RWMutex
	requests    chan Request
	subscribers map[string]chan Response
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		requests:    make(chan Request, requestBuffer),
		subscribers: make(map[string]chan Response),
	}
}

// Send submits a request for the coordinator. It reports false when the
// request had to be dropped because the coordinator's inbox is full.
func (b *Bus) Send(req Request) bool {
	select {
	case b.requests <- req:
		return true
	default:
		return false
	}
}

// Requests exposes the coordinator's inbound channel.
func (b *Bus) Requests() <-chan Request {
	return b.requests
}

// Subscribe registers a context and returns its response channel. Calling
// Subscribe again for the same context replaces the old channel.
func (b *Bus) Subscribe(contextID string) <-chan Response {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Response, responseBuffer)
	b.subscribers[contextID] = ch
	return ch
}

// Unsubscribe removes a context. Responses addressed to it afterwards are
// dropped silently.
func (b *Bus) Unsubscribe(contextID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[contextID]; ok {
		delete(b.subscribers, contextID)
		close(ch)
	}
}

// Deliver routes a response to its origin context. Unknown contexts and
// full inboxes drop the response; a late reply to a vanished consumer is
// not an error.
func (b *Bus) Deliver(resp Response) bool {
	b.mu.RLock()
	ch, ok := b.subscribers[resp.Origin.Context]
	b.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case ch <- resp:
		return true
	default:
		return false
	}
}

// Conn is one context's handle on the bus: an identity, an outbox and a
// subscribed inbox.
type Conn struct {
	bus       *Bus
	contextID string
	inbox     <-chan Response
}

// NewConn subscribes a context and returns its connection.
func NewConn(bus *Bus, contextID string) *Conn {
	return &Conn{
		bus:       bus,
		contextID: contextID,
		inbox:     bus.Subscribe(contextID),
	}
}

// ContextID returns the connection's context identity.
func (c *Conn) ContextID() string {
	return c.contextID
}

// Origin builds an Origin for a target within this context.
func (c *Conn) Origin(target string) Origin {
	return Origin{Context: c.contextID, Target: target}
}

// Send submits a request.
func (c *Conn) Send(req Request) bool {
	return c.bus.Send(req)
}

// Inbox exposes the raw response stream for contexts that consume
// responses continuously (the page overlay, the quick-launch box).
func (c *Conn) Inbox() <-chan Response {
	return c.inbox
}

// Do sends a request and waits for the response bearing its correlation ID.
// Responses for other correlation IDs arriving in between are discarded,
// which is acceptable for request/await contexts that issue one request at
// a time. The context bounds the wait.
func (c *Conn) Do(ctx context.Context, req Request) (Response, error) {
	if !req.Kind.ExpectsReply() {
		return Response{}, fmt.Errorf("kind %s expects no reply", req.Kind)
	}
	if !c.Send(req) {
		return Response{}, fmt.Errorf("coordinator inbox full")
	}

	for {
		select {
		case resp, ok := <-c.inbox:
			if !ok {
				return Response{}, fmt.Errorf("connection closed")
			}
			// SHOW_LOADING is an interim notification carrying the same
			// correlation ID as its search; keep waiting for the terminal
			// reply.
			if resp.CorrelationID == req.CorrelationID && resp.Kind != KindShowLoading {
				return resp, nil
			}
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
}

// Close unsubscribes the connection.
func (c *Conn) Close() {
	c.bus.Unsubscribe(c.contextID)
}
