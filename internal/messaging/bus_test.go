package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_ExpectsReply(t *testing.T) {
	assert.True(t, KindSearchQuery.ExpectsReply())
	assert.True(t, KindCheckServer.ExpectsReply())
	assert.True(t, KindGetStatus.ExpectsReply())
	assert.True(t, KindConnectSource.ExpectsReply())
	assert.False(t, KindPrewarm.ExpectsReply())
	assert.False(t, KindHideOverlay.ExpectsReply())
	assert.False(t, Kind("BOGUS").ExpectsReply())
}

func TestKind_IsRequest(t *testing.T) {
	assert.True(t, KindSearchQuery.IsRequest())
	assert.True(t, KindPrewarm.IsRequest())
	assert.False(t, KindSearchResults.IsRequest())
	assert.False(t, Kind("BOGUS").IsRequest())
}

func TestNewSearchRequest(t *testing.T) {
	origin := Origin{Context: "page", Target: "input-1"}
	req := NewSearchRequest(origin, "budget", 5)

	assert.Equal(t, KindSearchQuery, req.Kind)
	assert.Equal(t, "budget", req.Query)
	assert.Equal(t, 5, req.Limit)
	assert.Equal(t, origin, req.Origin)
	assert.NotEmpty(t, req.CorrelationID)

	other := NewSearchRequest(origin, "budget", 5)
	assert.NotEqual(t, req.CorrelationID, other.CorrelationID)
}

func TestBus_RoutesResponseToOrigin(t *testing.T) {
	bus := NewBus()
	pageInbox := bus.Subscribe("page")
	popupInbox := bus.Subscribe("popup")

	delivered := bus.Deliver(Response{
		Kind:   KindSearchResults,
		Origin: Origin{Context: "page", Target: "input-1"},
		Query:  "budget",
	})
	require.True(t, delivered)

	select {
	case resp := <-pageInbox:
		assert.Equal(t, "budget", resp.Query)
	case <-time.After(time.Second):
		t.Fatal("page inbox never received the response")
	}

	select {
	case resp := <-popupInbox:
		t.Fatalf("popup received response addressed to page: %+v", resp)
	default:
	}
}

func TestBus_DeliverToUnknownContextDropsSilently(t *testing.T) {
	bus := NewBus()
	assert.False(t, bus.Deliver(Response{Origin: Origin{Context: "gone"}}))
}

func TestBus_UnsubscribeClosesInbox(t *testing.T) {
	bus := NewBus()
	inbox := bus.Subscribe("page")
	bus.Unsubscribe("page")

	_, open := <-inbox
	assert.False(t, open)
	assert.False(t, bus.Deliver(Response{Origin: Origin{Context: "page"}}))
}

func TestConn_DoMatchesCorrelationID(t *testing.T) {
	bus := NewBus()
	conn := NewConn(bus, "launcher")

	// Fake coordinator: answer with an unrelated response first, then the
	// real one.
	go func() {
		req := <-bus.Requests()
		bus.Deliver(Response{
			Kind:          KindSearchResults,
			CorrelationID: "stale-earlier-request",
			Origin:        req.Origin,
		})
		bus.Deliver(Response{
			Kind:          KindSearchResults,
			CorrelationID: req.CorrelationID,
			Origin:        req.Origin,
			Query:         req.Query,
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := conn.Do(ctx, NewSearchRequest(conn.Origin(""), "roadmap", 1))
	require.NoError(t, err)
	assert.Equal(t, "roadmap", resp.Query)
}

func TestConn_DoSkipsInterimLoadingNotification(t *testing.T) {
	bus := NewBus()
	conn := NewConn(bus, "launcher")

	// Searches deliver SHOW_LOADING under the same correlation ID before
	// the terminal reply.
	go func() {
		req := <-bus.Requests()
		bus.Deliver(Response{
			Kind:          KindShowLoading,
			CorrelationID: req.CorrelationID,
			Origin:        req.Origin,
			Query:         req.Query,
		})
		bus.Deliver(Response{
			Kind:          KindSearchResults,
			CorrelationID: req.CorrelationID,
			Origin:        req.Origin,
			Query:         req.Query,
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := conn.Do(ctx, NewSearchRequest(conn.Origin(""), "roadmap", 1))
	require.NoError(t, err)
	assert.Equal(t, KindSearchResults, resp.Kind)
}

func TestConn_DoRejectsFireAndForgetKinds(t *testing.T) {
	bus := NewBus()
	conn := NewConn(bus, "launcher")

	_, err := conn.Do(context.Background(), NewRequest(KindPrewarm, conn.Origin("")))
	require.Error(t, err)
}

func TestConn_DoTimesOut(t *testing.T) {
	bus := NewBus()
	conn := NewConn(bus, "launcher")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := conn.Do(ctx, NewSearchRequest(conn.Origin(""), "roadmap", 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
