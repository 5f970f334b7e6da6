// Package watcher observes text-entry surfaces for the trigger pattern and
// turns matched keystrokes into routed search requests. It runs inside the
// page sandbox and talks to the rest of the system only through the bus.
package watcher

import "strings"

// SurfaceKind classifies the text surface an input event came from.
type SurfaceKind int

const (
	// SurfaceInput is a single-line text input.
	SurfaceInput SurfaceKind = iota
	// SurfaceTextArea is a multi-line text input.
	SurfaceTextArea
	// SurfaceEditable is a rich editable region whose text needs
	// normalization before matching.
	SurfaceEditable
)

// InputEvent is one keystroke-level change observed on a surface. Events
// for unknown targets register the target implicitly; no per-element
// subscription is needed.
type InputEvent struct {
	TargetID string
	Surface  SurfaceKind
	Value    string
}

// extractFunc is a pure extraction function for one surface capability.
type extractFunc func(string) string

// extractors dispatches extraction per capability so all surface kinds feed
// one shared matching pipeline.
var extractors = map[SurfaceKind]extractFunc{
	SurfaceInput:    extractSingleLine,
	SurfaceTextArea: extractMultiLine,
	SurfaceEditable: extractEditable,
}

func extractSingleLine(value string) string {
	return value
}

func extractMultiLine(value string) string {
	// The matchers never cross line boundaries, so the raw text is fine.
	return value
}

// extractEditable normalizes artifacts that editable regions introduce:
// non-breaking spaces instead of plain spaces and zero-width characters
// around the caret.
func extractEditable(value string) string {
	value = strings.ReplaceAll(value, " ", " ")
	value = strings.ReplaceAll(value, "​", "")
	return value
}

// Extract returns the matchable text for an event. Unknown surface kinds
// fall back to the raw value.
func Extract(ev InputEvent) string {
	if fn, ok := extractors[ev.Surface]; ok {
		return fn(ev.Value)
	}
	return ev.Value
}
