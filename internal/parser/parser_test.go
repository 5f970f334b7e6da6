package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParser_Parse_ScopedQueries(t *testing.T) {
	p := New(DefaultTrigger)

	tests := []struct {
		name  string
		input string
		scope SourceID
		query string
	}{
		{"mail alias space separated", "o/mail quarterly report", SourceGmail, "quarterly report"},
		{"mail alias slash separated", "o/mail/quarterly report", SourceGmail, "quarterly report"},
		{"email alias", "o/email invoices", SourceGmail, "invoices"},
		{"drive alias", "o/drive Q4 budget", SourceGDrive, "Q4 budget"},
		{"docs alias", "o/docs roadmap", SourceGDrive, "roadmap"},
		{"cal alias", "o/cal standup", SourceGCal, "standup"},
		{"meetings alias", "o/meetings всем", SourceGCal, "всем"},
		{"contacts alias", "o/contacts jane", SourceGPeople, "jane"},
		{"directory alias", "o/directory sales team", SourceGPeople, "sales team"},
		{"crm alias", "o/crm acme deal", SourceHubspot, "acme deal"},
		{"messages alias", "o/messages deploy thread", SourceSlack, "deploy thread"},
		{"wiki alias", "o/wiki onboarding", SourceNotion, "onboarding"},
		{"history alias", "o/history golang blog", SourceBrowser, "golang blog"},
		{"bookmarks alias", "o/bookmarks recipes", SourceBrowser, "recipes"},
		{"canonical name works too", "o/gmail receipts", SourceGmail, "receipts"},
		{"alias is case insensitive", "o/MAIL receipts", SourceGmail, "receipts"},
		{"slash and extra whitespace", "o/mail/   budget  ", SourceGmail, "budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input)
			assert.Equal(t, tt.scope, got.Scope)
			assert.Equal(t, tt.query, got.Query)
			assert.True(t, got.Scoped())
		})
	}
}

func TestParser_Parse_UnscopedFallthrough(t *testing.T) {
	p := New(DefaultTrigger)

	tests := []struct {
		name  string
		input string
		query string
	}{
		{"plain text", "quarterly report", "quarterly report"},
		{"trimmed", "  quarterly report  ", "quarterly report"},
		{"unknown scope token", "o/zzz something", "o/zzz something"},
		{"bare trigger with query", "o/ Q4 rep", "o/ Q4 rep"},
		{"scope with empty rest", "o/mail/ ", "o/mail/"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.input)
			assert.Equal(t, SourceID(""), got.Scope)
			assert.Equal(t, tt.query, got.Query)
			assert.False(t, got.Scoped())
		})
	}
}

func TestParser_Parse_Deterministic(t *testing.T) {
	p := New(DefaultTrigger)

	for _, input := range []string{"o/mail budget", "random text", "o/ hi"} {
		first := p.Parse(input)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, p.Parse(input))
		}
	}
}

func TestParser_MatchTrigger(t *testing.T) {
	p := New(DefaultTrigger)

	tests := []struct {
		name  string
		text  string
		query string
		ok    bool
	}{
		{"simple match", "o/ Q4 rep", "Q4 rep", true},
		{"trigger mid-text", "note to self o/ roadmap doc", "roadmap doc", true},
		{"two characters is enough", "o/ ab", "ab", true},
		{"one character is not", "o/ a", "", false},
		{"two multibyte characters is enough", "o/ éé", "éé", true},
		{"one multibyte character is not", "o/ é ", "", false},
		{"missing separating whitespace", "o/budget", "", false},
		{"bare trigger", "o/", "", false},
		{"trigger with trailing space only", "o/  ", "", false},
		{"no trigger at all", "quarterly report", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, ok := p.MatchTrigger(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.query, query)
		})
	}
}

func TestParser_MatchPrewarm(t *testing.T) {
	p := New(DefaultTrigger)

	assert.True(t, p.MatchPrewarm("o/"))
	assert.True(t, p.MatchPrewarm("o/ "))
	assert.True(t, p.MatchPrewarm("drafting a note o/"))
	assert.False(t, p.MatchPrewarm("o/ budget"))
	assert.False(t, p.MatchPrewarm("plain text"))
}

func TestParser_ContainsTrigger(t *testing.T) {
	p := New(DefaultTrigger)

	assert.True(t, p.ContainsTrigger("o/ budget"))
	assert.True(t, p.ContainsTrigger("before o/ after"))
	assert.False(t, p.ContainsTrigger("budget"))
	assert.False(t, p.ContainsTrigger(""))
}

func TestParser_StripTrigger(t *testing.T) {
	p := New(DefaultTrigger)

	term, ok := p.StripTrigger("o/roadmap doc")
	assert.True(t, ok)
	assert.Equal(t, "roadmap doc", term)

	term, ok = p.StripTrigger("o/ roadmap doc")
	assert.True(t, ok)
	assert.Equal(t, "roadmap doc", term)

	_, ok = p.StripTrigger("roadmap doc")
	assert.False(t, ok)
}

func TestNew_EmptyTriggerUsesDefault(t *testing.T) {
	p := New("")
	assert.Equal(t, DefaultTrigger, p.Trigger())
}

func TestLookupScope(t *testing.T) {
	id, ok := LookupScope("mail")
	assert.True(t, ok)
	assert.Equal(t, SourceGmail, id)

	_, ok = LookupScope("unknown")
	assert.False(t, ok)
}
