// Package popup implements the status dashboard: backend health, per-source
// account state and the sync/connect/disconnect actions, driven entirely
// through coordinator messages.
package popup

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

// DefaultActionTimeout bounds one coordinator round trip from the popup.
const DefaultActionTimeout = 30 * time.Second

// URLOpener opens a URL in the user's browser, used for OAuth consent pages.
type URLOpener interface {
	OpenInNewTab(url string) error
}

// statusMsg carries a refreshed server status.
type statusMsg struct {
	status *backend.ServerStatus
	online bool
	err    error
}

// actionMsg reports the outcome of a sync/connect/disconnect round trip.
type actionMsg struct {
	label   string
	authURL string
	err     error
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	conn    *messaging.Conn
	opener  URLOpener
	log     zerolog.Logger
	timeout time.Duration

	sources  []parser.SourceID
	status   *backend.ServerStatus
	online   bool
	cursor   int
	busy     bool
	notice   string
	quitting bool
}

// NewModel creates a dashboard model routing through conn.
func NewModel(conn *messaging.Conn, opener URLOpener, log zerolog.Logger) Model {
	return Model{
		conn:    conn,
		opener:  opener,
		log:     log,
		timeout: DefaultActionTimeout,
		sources: parser.KnownSources,
	}
}

// Init implements tea.Model. The dashboard refreshes on open.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

// refresh fetches server status through the coordinator.
func (m Model) refresh() tea.Cmd {
	conn, timeout := m.conn, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := conn.Do(ctx, messaging.NewRequest(messaging.KindGetStatus, conn.Origin("dashboard")))
		if err != nil {
			return statusMsg{err: err}
		}
		if resp.Err != "" {
			return statusMsg{err: fmt.Errorf("%s", resp.Err)}
		}
		return statusMsg{status: resp.Status, online: resp.Online}
	}
}

// action runs one source-directed request and reports its outcome.
func (m Model) action(kind messaging.Kind, source string, label string) tea.Cmd {
	conn, timeout := m.conn, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var req messaging.Request
		if source == "" {
			req = messaging.NewRequest(kind, conn.Origin("dashboard"))
		} else {
			req = messaging.NewSourceRequest(kind, conn.Origin("dashboard"), source)
		}

		resp, err := conn.Do(ctx, req)
		if err != nil {
			return actionMsg{label: label, err: err}
		}
		if resp.Err != "" {
			return actionMsg{label: label, err: fmt.Errorf("%s", resp.Err)}
		}
		return actionMsg{label: label, authURL: resp.AuthURL}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case statusMsg:
		m.busy = false
		if msg.err != nil {
			m.online = false
			m.notice = "Status unavailable. Is the backend running?"
			m.log.Debug().Err(msg.err).Msg("status refresh failed")
			return m, nil
		}
		m.status = msg.status
		m.online = msg.online
		m.notice = ""
		return m, nil

	case actionMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s failed: %v", msg.label, msg.err)
			return m, nil
		}
		if msg.authURL != "" {
			m.notice = fmt.Sprintf("%s: opening browser for consent", msg.label)
			if m.opener != nil {
				if err := m.opener.OpenInNewTab(msg.authURL); err != nil {
					m.notice = fmt.Sprintf("%s: open %s manually", msg.label, msg.authURL)
				}
			}
			return m, nil
		}
		m.notice = fmt.Sprintf("%s started", msg.label)
		m.busy = true
		return m, m.refresh()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "down", "j":
		if m.cursor < len(m.sources)-1 {
			m.cursor++
		}
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "r":
		m.busy = true
		m.notice = "Refreshing..."
		return m, m.refresh()

	case "s":
		m.busy = true
		return m, m.action(messaging.KindSyncAll, "", "Sync all")

	case "S", "enter":
		src := string(m.sources[m.cursor])
		m.busy = true
		return m, m.action(messaging.KindSyncSource, src, "Sync "+src)

	case "c":
		src := string(m.sources[m.cursor])
		m.busy = true
		return m, m.action(messaging.KindConnectSource, src, "Connect "+src)

	case "d":
		src := string(m.sources[m.cursor])
		m.busy = true
		return m, m.action(messaging.KindDisconnectSource, src, "Disconnect "+src)
	}

	return m, nil
}

// account returns the status row for a source, zero when unknown.
func (m Model) account(id parser.SourceID) backend.AccountStatus {
	if m.status == nil {
		return backend.AccountStatus{}
	}
	return m.status.Accounts[string(id)]
}
