// Package parser provides trigger detection and query scope parsing for oslash.
package parser

// SourceID identifies a connected data source on the backend.
type SourceID string

// Known source identifiers. These mirror the backend's connector names.
const (
	SourceGmail   SourceID = "gmail"
	SourceGDrive  SourceID = "gdrive"
	SourceGCal    SourceID = "gcal"
	SourceGPeople SourceID = "gpeople"
	SourceHubspot SourceID = "hubspot"
	SourceSlack   SourceID = "slack"
	SourceNotion  SourceID = "notion"
	SourceBrowser SourceID = "browser"
)

// KnownSources lists every source in display order.
var KnownSources = []SourceID{
	SourceGmail,
	SourceGDrive,
	SourceGCal,
	SourceGPeople,
	SourceHubspot,
	SourceSlack,
	SourceNotion,
	SourceBrowser,
}

// ParsedQuery is the result of parsing raw input against the scope grammar.
// Scope is empty when the input carried no recognized scope token.
type ParsedQuery struct {
	// Scope restricts the search to a single source; empty means all sources.
	Scope SourceID `json:"scope,omitempty"`
	// Query is the residual query text with the trigger and scope stripped.
	Query string `json:"query"`
}

// Scoped reports whether the query is restricted to a single source.
func (q ParsedQuery) Scoped() bool {
	return q.Scope != ""
}

// scopeAliases maps surface forms typed by the user to canonical source IDs.
// Canonical names are included so "o/gmail ..." works as well as "o/mail ...".
var scopeAliases = map[string]SourceID{
	"gmail":     SourceGmail,
	"mail":      SourceGmail,
	"email":     SourceGmail,
	"gdrive":    SourceGDrive,
	"drive":     SourceGDrive,
	"docs":      SourceGDrive,
	"gcal":      SourceGCal,
	"cal":       SourceGCal,
	"calendar":  SourceGCal,
	"meetings":  SourceGCal,
	"gpeople":   SourceGPeople,
	"contacts":  SourceGPeople,
	"people":    SourceGPeople,
	"directory": SourceGPeople,
	"hubspot":   SourceHubspot,
	"crm":       SourceHubspot,
	"slack":     SourceSlack,
	"messages":  SourceSlack,
	"notion":    SourceNotion,
	"wiki":      SourceNotion,
	"browser":   SourceBrowser,
	"history":   SourceBrowser,
	"bookmarks": SourceBrowser,
}

// LookupScope resolves a scope token to its canonical source ID.
func LookupScope(token string) (SourceID, bool) {
	id, ok := scopeAliases[token]
	return id, ok
}
