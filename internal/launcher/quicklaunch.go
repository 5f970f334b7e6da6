package launcher

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
)

// Navigator performs the navigation the quick-launch box resolves to.
type Navigator interface {
	Navigate(url string) error
}

// quick-launch styles.
var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("#4ade80")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
)

// responseMsg wraps a routed response for the Bubble Tea loop.
type responseMsg struct {
	resp messaging.Response
	ok   bool
}

// Model is the Bubble Tea model for the quick-launch box. Every keystroke
// forwards a live search through the coordinator; enter navigates to the
// selected result, or directly when the text is already a URL.
type Model struct {
	input    textinput.Model
	conn     *messaging.Conn
	nav      Navigator
	log      zerolog.Logger
	limit    int
	maxShown int

	results   []backend.SearchResult
	selected  int
	status    string
	lastQuery string
	width     int
	quitting  bool
}

// NewModel creates a quick-launch model routing through conn.
func NewModel(conn *messaging.Conn, nav Navigator, limit int, log zerolog.Logger) Model {
	input := textinput.New()
	input.Placeholder = "Search everything, or type a URL"
	input.Prompt = promptStyle.Render("o/ ")
	input.Focus()

	if limit <= 0 {
		limit = 8
	}

	return Model{
		input:    input,
		conn:     conn,
		nav:      nav,
		log:      log,
		limit:    limit,
		maxShown: limit,
		width:    80,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen waits for the next routed response.
func (m Model) listen() tea.Cmd {
	inbox := m.conn.Inbox()
	return func() tea.Msg {
		resp, ok := <-inbox
		return responseMsg{resp: resp, ok: ok}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "down", "ctrl+n":
			if m.selected < len(m.results)-1 {
				m.selected++
			}
			return m, nil

		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "enter":
			return m.submit()

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			if query := strings.TrimSpace(m.input.Value()); query != m.lastQuery {
				m.lastQuery = query
				return m, tea.Batch(cmd, m.search(query))
			}
			return m, cmd
		}

	case responseMsg:
		if !msg.ok {
			return m, nil
		}
		m.apply(msg.resp)
		return m, m.listen()
	}

	return m, nil
}

// search forwards one live query. Short or empty text clears the list
// instead of searching.
func (m *Model) search(query string) tea.Cmd {
	if utf8.RuneCountInString(query) < 2 {
		m.results = nil
		m.selected = 0
		m.status = ""
		return nil
	}
	req := messaging.NewSearchRequest(m.conn.Origin("quicklaunch"), query, m.limit)
	if !m.conn.Send(req) {
		m.status = "Search unavailable right now."
	}
	return nil
}

// apply folds one routed response into the model, dropping answers for
// queries the box has already moved past.
func (m *Model) apply(resp messaging.Response) {
	switch resp.Kind {
	case messaging.KindSearchResults:
		if resp.Query != m.lastQuery {
			return
		}
		m.results = resp.Results
		m.selected = 0
		m.status = ""
	case messaging.KindSearchError:
		if resp.Query != m.lastQuery {
			return
		}
		m.results = nil
		m.selected = 0
		m.status = resp.Err
	case messaging.KindShowLoading:
		// The box shows its own typing feedback; nothing to do.
	}
}

// submit resolves enter: direct URLs navigate immediately, otherwise the
// selected (or top) result wins.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	if looksLikeURL(text) {
		m.navigate(normalizeURL(text))
		m.quitting = true
		return m, tea.Quit
	}

	if len(m.results) > 0 {
		idx := m.selected
		if idx >= len(m.results) {
			idx = 0
		}
		if url := m.results[idx].URL; url != "" {
			m.navigate(url)
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m Model) navigate(url string) {
	if m.nav == nil {
		return
	}
	if err := m.nav.Navigate(url); err != nil {
		m.log.Warn().Err(err).Str("url", url).Msg("navigation failed")
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(failStyle.Render(m.status))
		b.WriteString("\n")
	}

	shown := m.results
	if len(shown) > m.maxShown {
		shown = shown[:m.maxShown]
	}
	for i, r := range shown {
		line := fmt.Sprintf("%s  %s", r.Title, dimStyle.Render(r.Source))
		if i == m.selected {
			b.WriteString(selectedStyle.Render(" " + line))
		} else {
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if len(shown) == 0 && m.status == "" && m.lastQuery != "" {
		b.WriteString(dimStyle.Render("No matches yet"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ select · enter open · esc dismiss"))
	return b.String()
}

// Selected exposes the highlighted result for tests and embedding hosts.
func (m Model) Selected() (backend.SearchResult, bool) {
	if len(m.results) == 0 || m.selected >= len(m.results) {
		return backend.SearchResult{}, false
	}
	return m.results[m.selected], true
}
