package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the rendered surface. The renderer mounts the view inside an
// isolated region, so these never leak into the host page and host styles
// never leak in.
var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(0, 1)

	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	selectedTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	metaStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
	snippetStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0c0c0"))
	emptyStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090")).Italic(true)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	cursorGlyph        = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Render(" ")
)

// sourceIcons maps backend source names to Nerd Font glyphs.
var sourceIcons = map[string]string{
	"gmail":   "", // envelope
	"gdrive":  "", // document
	"gcal":    "", // calendar
	"gpeople": "", // people
	"hubspot": "", // briefcase
	"slack":   "", // slack
	"notion":  "", // book
	"browser": "", // globe
}

func sourceIcon(source string) string {
	if icon, ok := sourceIcons[source]; ok {
		return icon
	}
	return "" // magnifier
}

// view renders the current state. Callers hold the controller lock.
func (c *Controller) view() string {
	switch c.state {
	case StateLoading:
		return boxStyle.Render(c.loadingView())
	case StateShowingResults:
		return boxStyle.Render(c.resultsView())
	case StateEmpty:
		return boxStyle.Render(c.emptyView())
	default:
		return ""
	}
}

func (c *Controller) loadingView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Searching %q", c.query)))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render("░░░░░░░░░░░░░░░░░░░░"))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render("░░░░░░░░░░░░"))
	return b.String()
}

func (c *Controller) resultsView() string {
	rows := make([]string, 0, len(c.results))
	for i, r := range c.results {
		var b strings.Builder

		title := titleStyle
		prefix := "  "
		if i == c.selected {
			title = selectedTitleStyle
			prefix = cursorGlyph
		}
		b.WriteString(prefix)
		b.WriteString(sourceIcon(r.Source))
		b.WriteString(" ")
		b.WriteString(title.Render(truncate(r.Title, 48)))
		b.WriteString("\n    ")
		b.WriteString(metaStyle.Render(resultMeta(r.Source, r.Path, r.Author, r.Score)))
		if r.Snippet != "" {
			b.WriteString("\n    ")
			b.WriteString(snippetStyle.Render(truncate(r.Snippet, 56)))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}

func (c *Controller) emptyView() string {
	if c.message != "" {
		return errorStyle.Render(c.message)
	}
	return emptyStyle.Render(fmt.Sprintf("No results for %q", c.query))
}

// resultMeta joins source, path or author, and the normalized score
// percentage into one muted line.
func resultMeta(source, path, author string, score float64) string {
	parts := []string{source}
	if path != "" {
		parts = append(parts, truncate(path, 28))
	} else if author != "" {
		parts = append(parts, author)
	}
	parts = append(parts, fmt.Sprintf("%d%%", int(score*100)))
	return strings.Join(parts, " · ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// viewHeight counts rendered lines for anchored positioning.
func viewHeight(view string) int {
	if view == "" {
		return 0
	}
	return strings.Count(view, "\n") + 1
}
