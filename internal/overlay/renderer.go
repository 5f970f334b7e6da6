package overlay

import (
	"fmt"
	"io"
	"sync"
)

// TermRenderer is the default Renderer: it mounts the view into a terminal
// writer. The terminal is inherently isolated from the watched surfaces, so
// no further style fencing is needed here.
type TermRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTermRenderer creates a renderer writing to w.
func NewTermRenderer(w io.Writer) *TermRenderer {
	return &TermRenderer{w: w}
}

// Mount implements Renderer.
func (r *TermRenderer) Mount(pos Position, view string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	placement := "below"
	if pos.Above {
		placement = "above"
	}
	fmt.Fprintf(r.w, "\n[overlay %s @%d,%d w%d]\n%s\n", placement, pos.X, pos.Y, pos.Width, view)
}

// Unmount implements Renderer.
func (r *TermRenderer) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.w, "[overlay hidden]\n")
}
