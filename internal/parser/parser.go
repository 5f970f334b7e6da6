package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultTrigger is the literal sequence that activates search.
const DefaultTrigger = "o/"

// Parser detects the trigger token and parses scoped queries. All methods
// are pure and safe for concurrent use once constructed.
type Parser struct {
	trigger string

	// scopeRe captures the scope token and residual text from inputs of the
	// form "<trigger><scope>/<text>" or "<trigger><scope> <text>".
	scopeRe *regexp.Regexp
	// triggerRe captures the query typed after "<trigger> " inside a larger
	// body of text. The query must be at least two characters long.
	triggerRe *regexp.Regexp
	// prewarmRe matches a bare trigger with nothing but optional trailing
	// whitespace after it, i.e. the user just typed the trigger.
	prewarmRe *regexp.Regexp
}

// New creates a Parser for the given trigger token. An empty trigger falls
// back to DefaultTrigger.
func New(trigger string) *Parser {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	quoted := regexp.QuoteMeta(trigger)

	return &Parser{
		trigger:   trigger,
		scopeRe:   regexp.MustCompile(`(?i)^` + quoted + `([a-z0-9]+)[/\s]+(.+)$`),
		triggerRe: regexp.MustCompile(quoted + `\s+(.{2,})`),
		prewarmRe: regexp.MustCompile(quoted + `\s*$`),
	}
}

// Trigger returns the configured trigger token.
func (p *Parser) Trigger() string {
	return p.trigger
}

// Parse applies the scope grammar to raw input. Inputs matching
// "<trigger><scope>/<text>" (or whitespace-separated) with a recognized
// scope alias yield a scoped query; everything else, including unknown
// scope tokens, falls through to an unscoped query over the whole trimmed
// input. Parse is total: it never fails.
func (p *Parser) Parse(input string) ParsedQuery {
	trimmed := strings.TrimSpace(input)

	m := p.scopeRe.FindStringSubmatch(trimmed)
	if m != nil {
		scope, known := LookupScope(strings.ToLower(m[1]))
		rest := strings.TrimSpace(m[2])
		if known && rest != "" {
			return ParsedQuery{Scope: scope, Query: rest}
		}
	}

	return ParsedQuery{Query: trimmed}
}

// MatchTrigger scans text for the trigger pattern "<trigger> <query>" and
// returns the query typed after it. The separating whitespace is required
// and the query must contain at least two characters.
func (p *Parser) MatchTrigger(text string) (string, bool) {
	m := p.triggerRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	query := strings.TrimSpace(m[1])
	if utf8.RuneCountInString(query) < 2 {
		return "", false
	}
	return query, true
}

// MatchPrewarm reports whether the text ends with a bare trigger token,
// meaning a query is likely about to be typed.
func (p *Parser) MatchPrewarm(text string) bool {
	return p.prewarmRe.MatchString(text)
}

// ContainsTrigger reports whether the trigger token appears anywhere in the
// text. Used to decide when a previously shown overlay should be hidden.
func (p *Parser) ContainsTrigger(text string) bool {
	return strings.Contains(text, p.trigger)
}

// StripTrigger removes a leading trigger token and returns the remaining
// term. It reports false when the text does not start with the trigger.
func (p *Parser) StripTrigger(text string) (string, bool) {
	if !strings.HasPrefix(text, p.trigger) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(text, p.trigger)), true
}

// String implements fmt.Stringer for debug logging.
func (p *Parser) String() string {
	return fmt.Sprintf("parser(trigger=%q)", p.trigger)
}
