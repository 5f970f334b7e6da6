package launcher

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
)

type fakeNavigator struct {
	urls []string
}

func (n *fakeNavigator) Navigate(url string) error {
	n.urls = append(n.urls, url)
	return nil
}

func newQuickLaunch(t *testing.T) (Model, *messaging.Bus, *fakeNavigator) {
	t.Helper()
	bus := messaging.NewBus()
	conn := messaging.NewConn(bus, "quicklaunch")
	t.Cleanup(conn.Close)
	nav := &fakeNavigator{}
	return NewModel(conn, nav, 8, zerolog.Nop()), bus, nav
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func drainSearch(t *testing.T, bus *messaging.Bus) messaging.Request {
	t.Helper()
	var last messaging.Request
	for {
		select {
		case req := <-bus.Requests():
			last = req
		default:
			require.NotEmpty(t, last.CorrelationID, "expected at least one request")
			return last
		}
	}
}

func TestQuickLaunchSendsLiveSearchPerEdit(t *testing.T) {
	m, bus, _ := newQuickLaunch(t)

	m = typeText(m, "roadmap")

	req := drainSearch(t, bus)
	assert.Equal(t, messaging.KindSearchQuery, req.Kind)
	assert.Equal(t, "roadmap", req.Query)
	assert.Equal(t, 8, req.Limit)
}

func TestQuickLaunchAppliesMatchingResults(t *testing.T) {
	m, _, _ := newQuickLaunch(t)
	m = typeText(m, "roadmap")

	next, _ := m.Update(responseMsg{ok: true, resp: messaging.Response{
		Kind:    messaging.KindSearchResults,
		Query:   "roadmap",
		Results: []backend.SearchResult{{ID: "1", Title: "2025 Roadmap", URL: "https://x/1"}},
	}})
	m = next.(Model)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "2025 Roadmap", sel.Title)
}

func TestQuickLaunchDropsStaleResults(t *testing.T) {
	m, _, _ := newQuickLaunch(t)
	m = typeText(m, "roadmap")
	m = typeText(m, " q4")

	next, _ := m.Update(responseMsg{ok: true, resp: messaging.Response{
		Kind:    messaging.KindSearchResults,
		Query:   "roadmap",
		Results: []backend.SearchResult{{ID: "1", Title: "Old answer"}},
	}})
	m = next.(Model)

	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestQuickLaunchEnterOpensSelectedResult(t *testing.T) {
	m, _, nav := newQuickLaunch(t)
	m = typeText(m, "roadmap")

	next, _ := m.Update(responseMsg{ok: true, resp: messaging.Response{
		Kind:  messaging.KindSearchResults,
		Query: "roadmap",
		Results: []backend.SearchResult{
			{ID: "1", Title: "First", URL: "https://x/1"},
			{ID: "2", Title: "Second", URL: "https://x/2"},
		},
	}})
	m = next.(Model)

	m, _ = press(m, tea.KeyDown)
	m, cmd := press(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.Equal(t, []string{"https://x/2"}, nav.urls)
}

func TestQuickLaunchSelectionClamps(t *testing.T) {
	m, _, _ := newQuickLaunch(t)
	m = typeText(m, "roadmap")

	next, _ := m.Update(responseMsg{ok: true, resp: messaging.Response{
		Kind:    messaging.KindSearchResults,
		Query:   "roadmap",
		Results: []backend.SearchResult{{ID: "1", Title: "Only", URL: "https://x/1"}},
	}})
	m = next.(Model)

	m, _ = press(m, tea.KeyUp)
	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyDown)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Only", sel.Title)
}

func TestQuickLaunchEnterNavigatesDirectURL(t *testing.T) {
	m, _, nav := newQuickLaunch(t)
	m = typeText(m, "github.com/charmbracelet")

	m, cmd := press(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.Equal(t, []string{"https://github.com/charmbracelet"}, nav.urls)
	assert.Empty(t, m.View())
}

func TestQuickLaunchEnterWithoutResultsDoesNothing(t *testing.T) {
	m, _, nav := newQuickLaunch(t)
	m = typeText(m, "roadmap")

	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, nav.urls)
}

func TestQuickLaunchErrorShowsStatus(t *testing.T) {
	m, _, _ := newQuickLaunch(t)
	m = typeText(m, "roadmap")

	next, _ := m.Update(responseMsg{ok: true, resp: messaging.Response{
		Kind:  messaging.KindSearchError,
		Query: "roadmap",
		Err:   "Server offline. Start the oslash backend to search.",
	}})
	m = next.(Model)

	assert.Contains(t, m.View(), "Server offline")
}
