package overlay

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ankitkumarpansari/oslash-local/internal/backend"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
)

// MaxVisibleResults caps the number of rendered result rows.
const MaxVisibleResults = 5

// State enumerates the overlay lifecycle.
type State int

const (
	StateHidden State = iota
	StateLoading
	StateShowingResults
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateHidden:
		return "hidden"
	case StateLoading:
		return "loading"
	case StateShowingResults:
		return "showing"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Key is a platform-agnostic keyboard action while the overlay is visible.
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyEnter
	KeyEscape
	// KeyAsk is the reserved follow-up "ask" affordance. Only the hook
	// exists at this layer.
	KeyAsk
)

// Renderer mounts and unmounts the rendered surface. Implementations must
// isolate their styling from the host page.
type Renderer interface {
	Mount(pos Position, view string)
	Unmount()
}

// URLOpener opens a result in a new tab.
type URLOpener interface {
	OpenInNewTab(url string) error
}

// LiveQueryProvider reports the query currently matched against a target's
// live text. Used as the staleness check for inbound responses.
type LiveQueryProvider interface {
	CurrentQuery(targetID string) (string, bool)
}

// AnchorProvider resolves the geometry of the triggering input.
type AnchorProvider interface {
	AnchorFor(targetID string) Anchor
}

// AskFunc is the reserved hook invoked by the "ask" key.
type AskFunc func(query string, selected *backend.SearchResult)

// Controller is the overlay state machine. At most one overlay surface is
// mounted at any time; showing a new one always tears down the previous one
// first, and every path out of visibility goes through the single Hide.
type Controller struct {
	renderer   Renderer
	opener     URLOpener
	live       LiveQueryProvider
	anchors    AnchorProvider
	onAsk      AskFunc
	maxVisible int
	minWidth   int
	log        zerolog.Logger

	mu        sync.Mutex
	state     State
	target    string
	query     string
	message   string
	results   []backend.SearchResult
	selected  int
	mounted   bool
	disposers []func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithAskHook installs the follow-up "ask" hook.
func WithAskHook(fn AskFunc) ControllerOption {
	return func(c *Controller) { c.onAsk = fn }
}

// WithMaxVisible overrides the rendered result cap.
func WithMaxVisible(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.maxVisible = n
		}
	}
}

// WithMinWidth overrides the minimum mounted surface width.
func WithMinWidth(w int) ControllerOption {
	return func(c *Controller) {
		if w > 0 {
			c.minWidth = w
		}
	}
}

// NewController creates a hidden Controller.
func NewController(r Renderer, opener URLOpener, live LiveQueryProvider, anchors AnchorProvider, log zerolog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		renderer:   r,
		opener:     opener,
		live:       live,
		anchors:    anchors,
		maxVisible: MaxVisibleResults,
		minWidth:   MinWidth,
		log:        log,
		state:      StateHidden,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleResponse applies one inbound routed message to the state machine.
// Stale responses are dropped without mutating any state.
func (c *Controller) HandleResponse(resp messaging.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch resp.Kind {
	case messaging.KindShowLoading:
		c.showLoading(resp.Origin.Target, resp.Query)
	case messaging.KindSearchResults:
		if c.isStale(resp) {
			c.log.Debug().Str("query", resp.Query).Msg("dropping stale results")
			return
		}
		if len(resp.Results) == 0 {
			c.showEmpty(resp.Origin.Target, resp.Query, "")
			return
		}
		c.showResults(resp.Origin.Target, resp.Query, resp.Results)
	case messaging.KindSearchError:
		if c.state == StateHidden || c.isStale(resp) {
			return
		}
		c.showEmpty(resp.Origin.Target, resp.Query, resp.Err)
	case messaging.KindHideOverlay:
		c.hideLocked()
	}
}

// isStale compares a response's originating query against the target's
// live input state.
func (c *Controller) isStale(resp messaging.Response) bool {
	if c.live == nil {
		return false
	}
	current, ok := c.live.CurrentQuery(resp.Origin.Target)
	return !ok || current != resp.Query
}

// showLoading tears down any existing surface first, then mounts the
// loading skeleton anchored to the triggering input.
func (c *Controller) showLoading(target, query string) {
	if c.state != StateHidden {
		c.hideLocked()
	}
	c.state = StateLoading
	c.target = target
	c.query = query
	c.mount()
}

func (c *Controller) showResults(target, query string, results []backend.SearchResult) {
	if c.state != StateHidden && (c.target != target || c.query != query) {
		c.hideLocked()
	}
	if len(results) > c.maxVisible {
		results = results[:c.maxVisible]
	}
	c.state = StateShowingResults
	c.target = target
	c.query = query
	c.results = results
	c.selected = 0
	c.mount()
}

func (c *Controller) showEmpty(target, query, message string) {
	c.state = StateEmpty
	c.target = target
	c.query = query
	c.message = message
	c.results = nil
	c.selected = 0
	c.mount()
}

// mount renders the current state at its anchored position. An existing
// surface is always removed first so at most one overlay node exists.
func (c *Controller) mount() {
	anchor := Anchor{}
	if c.anchors != nil {
		anchor = c.anchors.AnchorFor(c.target)
	}
	view := c.view()
	pos := AnchoredPosition(anchor, viewHeight(view))
	if pos.Width < c.minWidth {
		pos.Width = c.minWidth
	}
	if c.mounted {
		c.renderer.Unmount()
	}
	c.renderer.Mount(pos, view)
	c.mounted = true
}

// Hide is the single teardown path. External dismissals, errors and user
// escapes all end up here, so listener cleanup can never be skipped.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideLocked()
}

func (c *Controller) hideLocked() {
	if c.state == StateHidden {
		return
	}

	for i := len(c.disposers) - 1; i >= 0; i-- {
		c.disposers[i]()
	}
	c.disposers = nil

	if c.mounted {
		c.renderer.Unmount()
		c.mounted = false
	}

	c.state = StateHidden
	c.target = ""
	c.query = ""
	c.message = ""
	c.results = nil
	c.selected = 0
}

// AddDisposer registers cleanup that is guaranteed to run on teardown,
// e.g. for host event listeners attached while the overlay is visible.
func (c *Controller) AddDisposer(dispose func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposers = append(c.disposers, dispose)
}

// HandleKey processes keyboard input while the overlay is visible. Keys
// arriving while hidden are ignored.
func (c *Controller) HandleKey(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateHidden {
		return
	}

	switch key {
	case KeyDown:
		c.moveSelection(1)
	case KeyUp:
		c.moveSelection(-1)
	case KeyEnter:
		c.activateSelection()
	case KeyEscape:
		c.hideLocked()
	case KeyAsk:
		if c.onAsk != nil {
			c.onAsk(c.query, c.selectedResult())
		}
	}
}

// OutsideClick dismisses the overlay exactly like escape does.
func (c *Controller) OutsideClick() {
	c.Hide()
}

// moveSelection clamps the index to [0, len(results)-1].
func (c *Controller) moveSelection(delta int) {
	if c.state != StateShowingResults {
		return
	}
	c.selected += delta
	if c.selected < 0 {
		c.selected = 0
	}
	if max := len(c.results) - 1; c.selected > max {
		c.selected = max
	}
	c.mount()
}

// activateSelection opens the selected result in a new tab, then hides.
func (c *Controller) activateSelection() {
	result := c.selectedResult()
	if result == nil {
		return
	}
	if result.URL != "" && c.opener != nil {
		if err := c.opener.OpenInNewTab(result.URL); err != nil {
			c.log.Warn().Err(err).Str("url", result.URL).Msg("failed to open result")
		}
	}
	c.hideLocked()
}

func (c *Controller) selectedResult() *backend.SearchResult {
	if c.state != StateShowingResults || c.selected >= len(c.results) {
		return nil
	}
	return &c.results[c.selected]
}

// Snapshot is a copy of the visible state for renderers and tests.
type Snapshot struct {
	State    State
	Target   string
	Query    string
	Message  string
	Results  []backend.SearchResult
	Selected int
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		State:    c.state,
		Target:   c.target,
		Query:    c.query,
		Message:  c.message,
		Results:  append([]backend.SearchResult(nil), c.results...),
		Selected: c.selected,
	}
}
