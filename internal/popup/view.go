package popup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e4e4e4"))
	onlineStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	offlineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	rowStyle        = lipgloss.NewStyle().PaddingLeft(2)
	cursorRowStyle  = lipgloss.NewStyle().PaddingLeft(0).Bold(true)
	detailStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#606060"))
	connectedMark   = onlineStyle.Render("●")
	unconnectedMark = detailStyle.Render("○")
)

// sourceLabels are the display names for each source row.
var sourceLabels = map[parser.SourceID]string{
	parser.SourceGmail:   "Gmail",
	parser.SourceGDrive:  "Google Drive",
	parser.SourceGCal:    "Google Calendar",
	parser.SourceGPeople: "Google Contacts",
	parser.SourceHubspot: "HubSpot",
	parser.SourceSlack:   "Slack",
	parser.SourceNotion:  "Notion",
	parser.SourceBrowser: "Browser",
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("oslash"))
	b.WriteString("  ")
	if m.online {
		b.WriteString(onlineStyle.Render("server online"))
	} else {
		b.WriteString(offlineStyle.Render("server offline"))
	}
	if m.status != nil {
		b.WriteString(detailStyle.Render(fmt.Sprintf("  %d documents", m.status.TotalDocuments)))
	}
	b.WriteString("\n\n")

	for i, id := range m.sources {
		line := m.sourceRow(id)
		if i == m.cursor {
			b.WriteString(cursorRowStyle.Render("> " + line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh · s sync all · S sync · c connect · d disconnect · q quit"))
	return b.String()
}

func (m Model) sourceRow(id parser.SourceID) string {
	acct := m.account(id)
	mark := unconnectedMark
	if acct.Connected {
		mark = connectedMark
	}

	label := sourceLabels[id]
	if label == "" {
		label = string(id)
	}

	detail := accountDetail(acct)
	if detail == "" {
		return fmt.Sprintf("%s %-16s", mark, label)
	}
	return fmt.Sprintf("%s %-16s %s", mark, label, detailStyle.Render(detail))
}

// accountDetail summarizes one connected account for its row.
func accountDetail(acct backend.AccountStatus) string {
	if !acct.Connected {
		return "not connected"
	}

	parts := make([]string, 0, 3)
	if acct.Email != "" {
		parts = append(parts, acct.Email)
	}
	parts = append(parts, fmt.Sprintf("%d docs", acct.DocumentCount))
	if acct.LastSync != "" {
		parts = append(parts, "synced "+acct.LastSync)
	}
	return strings.Join(parts, " · ")
}
