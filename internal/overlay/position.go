// Package overlay owns the transient, keyboard-driven result surface. The
// controller is a pure state machine behind a narrow Renderer interface so
// the isolation mechanism (separate render tree, window, terminal region)
// can be substituted without touching the transition rules.
package overlay

// MinWidth is the minimum rendered overlay width.
const MinWidth = 44

// Anchor describes the geometry of the triggering input within its
// viewport, in whatever units the host surface uses.
type Anchor struct {
	X, Y           int
	Width, Height  int
	ViewportWidth  int
	ViewportHeight int
}

// Position is the computed placement for the overlay surface.
type Position struct {
	X, Y  int
	Width int
	// Above is set when there was not enough room below the anchor.
	Above bool
}

// AnchoredPosition places the overlay near its anchor: preferred below the
// input, flipped above when the viewport space below is insufficient. The
// horizontal position stays pinned to the input's left edge.
func AnchoredPosition(a Anchor, contentHeight int) Position {
	pos := Position{
		X:     a.X,
		Width: a.Width,
	}
	if pos.Width < MinWidth {
		pos.Width = MinWidth
	}

	below := a.Y + a.Height
	if below+contentHeight <= a.ViewportHeight {
		pos.Y = below
		return pos
	}

	pos.Above = true
	pos.Y = a.Y - contentHeight
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos
}
