package overlay

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
)

// fakeRenderer tracks mount/unmount ordering and enforces the cardinality
// invariant: never two surfaces mounted at once.
type fakeRenderer struct {
	t        *testing.T
	mountedN int
	mounts   int
	unmounts int
	lastView string
}

func (f *fakeRenderer) Mount(_ Position, view string) {
	f.mountedN++
	f.mounts++
	f.lastView = view
	if f.mountedN > 1 {
		f.t.Fatal("two overlay surfaces mounted at once")
	}
}

func (f *fakeRenderer) Unmount() {
	f.mountedN--
	f.unmounts++
	if f.mountedN < 0 {
		f.t.Fatal("unmount without mount")
	}
}

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) OpenInNewTab(url string) error {
	f.opened = append(f.opened, url)
	return nil
}

// fakeLive scripts the live query per target.
type fakeLive struct {
	queries map[string]string
}

func (f *fakeLive) CurrentQuery(target string) (string, bool) {
	q, ok := f.queries[target]
	return q, ok
}

type fixedAnchors struct{ anchor Anchor }

func (f fixedAnchors) AnchorFor(string) Anchor { return f.anchor }

func newTestController(t *testing.T) (*Controller, *fakeRenderer, *fakeOpener, *fakeLive) {
	t.Helper()
	r := &fakeRenderer{t: t}
	opener := &fakeOpener{}
	live := &fakeLive{queries: map[string]string{}}
	anchors := fixedAnchors{anchor: Anchor{X: 10, Y: 5, Width: 50, Height: 2, ViewportWidth: 120, ViewportHeight: 40}}
	c := NewController(r, opener, live, anchors, zerolog.Nop())
	return c, r, opener, live
}

func results(scores ...float64) []backend.SearchResult {
	out := make([]backend.SearchResult, len(scores))
	for i, s := range scores {
		out[i] = backend.SearchResult{
			ID:     string(rune('a' + i)),
			Title:  "Result",
			Source: "gdrive",
			URL:    "https://example.com/" + string(rune('a'+i)),
			Score:  s,
		}
	}
	return out
}

func deliver(c *Controller, kind messaging.Kind, target, query string, rs []backend.SearchResult) {
	c.HandleResponse(messaging.Response{
		Kind:    kind,
		Origin:  messaging.Origin{Context: "page", Target: target},
		Query:   query,
		Results: rs,
	})
}

func TestController_LoadingToResults(t *testing.T) {
	c, r, _, live := newTestController(t)
	live.queries["input-1"] = "budget"

	deliver(c, messaging.KindShowLoading, "input-1", "budget", nil)
	assert.Equal(t, StateLoading, c.Snapshot().State)

	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.95, 0.80, 0.60))
	snap := c.Snapshot()
	assert.Equal(t, StateShowingResults, snap.State)
	assert.Len(t, snap.Results, 3)
	assert.Equal(t, 0, snap.Selected, "first row selected by default")
	assert.Equal(t, 1, r.mountedN)
}

func TestController_SelectionClampsAtBounds(t *testing.T) {
	c, _, _, live := newTestController(t)
	live.queries["input-1"] = "budget"

	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.95, 0.80, 0.60))

	c.HandleKey(KeyDown)
	c.HandleKey(KeyDown)
	assert.Equal(t, 2, c.Snapshot().Selected)

	c.HandleKey(KeyDown)
	assert.Equal(t, 2, c.Snapshot().Selected, "selection clamps at the last row")

	c.HandleKey(KeyUp)
	c.HandleKey(KeyUp)
	c.HandleKey(KeyUp)
	assert.Equal(t, 0, c.Snapshot().Selected, "selection clamps at the first row")
}

func TestController_EmptyResultsNeverShow(t *testing.T) {
	c, _, _, live := newTestController(t)
	live.queries["input-1"] = "xyzzy123"

	deliver(c, messaging.KindSearchResults, "input-1", "xyzzy123", nil)
	snap := c.Snapshot()
	assert.Equal(t, StateEmpty, snap.State)
	assert.Equal(t, "xyzzy123", snap.Query)
}

func TestController_StaleResponseDropped(t *testing.T) {
	c, _, _, live := newTestController(t)
	live.queries["input-1"] = "budget 2026"

	deliver(c, messaging.KindShowLoading, "input-1", "budget 2026", nil)

	// Answer for an older query. The live text has moved on.
	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.9))
	assert.Equal(t, StateLoading, c.Snapshot().State, "stale response must not mutate state")

	// The fresh answer lands normally.
	deliver(c, messaging.KindSearchResults, "input-1", "budget 2026", results(0.9))
	assert.Equal(t, StateShowingResults, c.Snapshot().State)
}

func TestController_CardinalityOnRetrigger(t *testing.T) {
	c, r, _, live := newTestController(t)
	live.queries["input-1"] = "budget"
	live.queries["input-2"] = "roadmap"

	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.9))
	deliver(c, messaging.KindShowLoading, "input-2", "roadmap", nil)

	// fakeRenderer fails the test if two surfaces coexist; ordering is
	// teardown first, then mount.
	assert.Equal(t, 1, r.mountedN)
	assert.GreaterOrEqual(t, r.unmounts, 1)
	assert.Equal(t, "input-2", c.Snapshot().Target)
}

func TestController_DisplayCap(t *testing.T) {
	c, _, _, live := newTestController(t)
	live.queries["input-1"] = "budget"

	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3))
	assert.Len(t, c.Snapshot().Results, MaxVisibleResults)
}

func TestController_EnterOpensSelectedAndHides(t *testing.T) {
	c, r, opener, live := newTestController(t)
	live.queries["input-1"] = "budget"

	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.95, 0.80))
	c.HandleKey(KeyDown)
	c.HandleKey(KeyEnter)

	require.Len(t, opener.opened, 1)
	assert.Equal(t, "https://example.com/b", opener.opened[0])
	assert.Equal(t, StateHidden, c.Snapshot().State)
	assert.Equal(t, 0, r.mountedN)
}

func TestController_SingleHidePathRunsDisposers(t *testing.T) {
	tests := []struct {
		name    string
		dismiss func(c *Controller)
	}{
		{"escape key", func(c *Controller) { c.HandleKey(KeyEscape) }},
		{"outside click", func(c *Controller) { c.OutsideClick() }},
		{"external hide message", func(c *Controller) {
			deliver(c, messaging.KindHideOverlay, "input-1", "", nil)
		}},
		{"explicit hide", func(c *Controller) { c.Hide() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r, _, live := newTestController(t)
			live.queries["input-1"] = "budget"
			deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.9))

			disposed := 0
			c.AddDisposer(func() { disposed++ })

			tt.dismiss(c)
			assert.Equal(t, StateHidden, c.Snapshot().State)
			assert.Equal(t, 1, disposed, "disposer must run exactly once on teardown")
			assert.Equal(t, 0, r.mountedN)

			// A second dismissal is a no-op.
			tt.dismiss(c)
			assert.Equal(t, 1, disposed)
		})
	}
}

func TestController_ErrorShowsInlineMessage(t *testing.T) {
	c, r, _, live := newTestController(t)
	live.queries["input-1"] = "budget"

	deliver(c, messaging.KindShowLoading, "input-1", "budget", nil)
	c.HandleResponse(messaging.Response{
		Kind:   messaging.KindSearchError,
		Origin: messaging.Origin{Context: "page", Target: "input-1"},
		Query:  "budget",
		Err:    "Server offline. Start the oslash backend to search.",
	})

	snap := c.Snapshot()
	assert.Equal(t, StateEmpty, snap.State)
	assert.Contains(t, snap.Message, "Server offline")
	assert.Contains(t, r.lastView, "Server offline")
}

func TestController_ErrorWhileHiddenIgnored(t *testing.T) {
	c, r, _, _ := newTestController(t)

	c.HandleResponse(messaging.Response{
		Kind:   messaging.KindSearchError,
		Origin: messaging.Origin{Context: "page", Target: "input-1"},
		Err:    "boom",
	})
	assert.Equal(t, StateHidden, c.Snapshot().State)
	assert.Zero(t, r.mounts)
}

func TestController_KeysWhileHiddenIgnored(t *testing.T) {
	c, _, opener, _ := newTestController(t)

	c.HandleKey(KeyDown)
	c.HandleKey(KeyEnter)
	assert.Empty(t, opener.opened)
	assert.Equal(t, StateHidden, c.Snapshot().State)
}

func TestController_AskHook(t *testing.T) {
	r := &fakeRenderer{t: t}
	live := &fakeLive{queries: map[string]string{"input-1": "budget"}}

	var askedQuery string
	var askedResult *backend.SearchResult
	c := NewController(r, &fakeOpener{}, live, fixedAnchors{}, zerolog.Nop(),
		WithAskHook(func(query string, selected *backend.SearchResult) {
			askedQuery = query
			askedResult = selected
		}))

	deliver(c, messaging.KindSearchResults, "input-1", "budget", results(0.9))
	c.HandleKey(KeyAsk)

	assert.Equal(t, "budget", askedQuery)
	require.NotNil(t, askedResult)
	assert.Equal(t, StateShowingResults, c.Snapshot().State, "ask must not dismiss the overlay")
}

func TestAnchoredPosition(t *testing.T) {
	anchor := Anchor{X: 12, Y: 10, Width: 60, Height: 2, ViewportWidth: 120, ViewportHeight: 40}

	t.Run("prefers below", func(t *testing.T) {
		pos := AnchoredPosition(anchor, 8)
		assert.False(t, pos.Above)
		assert.Equal(t, 12, pos.Y)
		assert.Equal(t, 12, pos.X)
		assert.Equal(t, 60, pos.Width)
	})

	t.Run("flips above when space below is short", func(t *testing.T) {
		low := anchor
		low.Y = 36
		pos := AnchoredPosition(low, 8)
		assert.True(t, pos.Above)
		assert.Equal(t, 28, pos.Y)
	})

	t.Run("clamps above placement to the viewport", func(t *testing.T) {
		tall := Anchor{X: 0, Y: 2, Width: 50, Height: 1, ViewportHeight: 4}
		pos := AnchoredPosition(tall, 10)
		assert.True(t, pos.Above)
		assert.Equal(t, 0, pos.Y)
	})

	t.Run("enforces minimum width", func(t *testing.T) {
		narrow := anchor
		narrow.Width = 10
		pos := AnchoredPosition(narrow, 8)
		assert.Equal(t, MinWidth, pos.Width)
	})
}

func TestViewRendering(t *testing.T) {
	c, r, _, live := newTestController(t)
	live.queries["input-1"] = "budget"

	deliver(c, messaging.KindSearchResults, "input-1", "budget", []backend.SearchResult{
		{ID: "1", Title: "Q4 Budget", Source: "gdrive", Path: "Finance/2026", Snippet: "draft numbers", URL: "https://x", Score: 0.95},
	})
	assert.Contains(t, r.lastView, "Q4 Budget")
	assert.Contains(t, r.lastView, "95%")
	assert.Contains(t, r.lastView, "gdrive")

	deliver(c, messaging.KindSearchResults, "input-1", "budget", nil)
	assert.Contains(t, r.lastView, "No results")
}
