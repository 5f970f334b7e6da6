package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ankitkumarpansari/oslash-local/internal/logging"
	"github.com/ankitkumarpansari/oslash-local/internal/messaging"
	"github.com/ankitkumarpansari/oslash-local/internal/parser"
)

// Default debounce intervals. The prewarm matcher fires faster because it
// only pings the backend to cut first-result latency.
const (
	DefaultTriggerDebounce = 300 * time.Millisecond
	DefaultPrewarmDebounce = 100 * time.Millisecond
)

// Config tunes a Watcher.
type Config struct {
	TriggerDebounce time.Duration
	PrewarmDebounce time.Duration
	// SearchLimit is forwarded on emitted search requests.
	SearchLimit int
}

// targetState is the per-surface bookkeeping. Debouncing is per target, not
// global, so two inputs typed into concurrently are tracked independently.
type targetState struct {
	triggerTimer  *time.Timer
	prewarmTimer  *time.Timer
	liveText      string
	lastEmitted   string
	overlayActive bool
}

// Watcher applies the trigger and prewarm matchers to every input event,
// debounced per target, and emits requests on the bus. Its guarantee: for a
// single target there is never more than one trigger request produced per
// settling period, and an unchanged query is never re-emitted.
type Watcher struct {
	parser *parser.Parser
	conn   *messaging.Conn
	cfg    Config
	log    zerolog.Logger

	mu      sync.Mutex
	targets map[string]*targetState
}

// New creates a Watcher emitting through conn.
func New(p *parser.Parser, conn *messaging.Conn, cfg Config, log zerolog.Logger) *Watcher {
	if cfg.TriggerDebounce <= 0 {
		cfg.TriggerDebounce = DefaultTriggerDebounce
	}
	if cfg.PrewarmDebounce <= 0 {
		cfg.PrewarmDebounce = DefaultPrewarmDebounce
	}

	return &Watcher{
		parser:  p,
		conn:    conn,
		cfg:     cfg,
		log:     log,
		targets: make(map[string]*targetState),
	}
}

// Run consumes the shared input-event stream until it closes or the context
// is canceled.
func (w *Watcher) Run(ctx context.Context, events <-chan InputEvent) error {
	defer w.Close()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.HandleEvent(ctx, ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleEvent feeds one input event through both matchers. A new matched
// keystroke cancels any pending timer for the same target; it never cancels
// an already-in-flight network call, which is handled by staleness checks
// downstream.
func (w *Watcher) HandleEvent(ctx context.Context, ev InputEvent) {
	text := Extract(ev)
	ctx = logging.WithTarget(logging.WithContext(ctx, w.log), ev.TargetID)

	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.targets[ev.TargetID]
	if !ok {
		st = &targetState{}
		w.targets[ev.TargetID] = st
	}
	st.liveText = text

	targetID := ev.TargetID

	if _, matched := w.parser.MatchTrigger(text); matched {
		if st.triggerTimer != nil {
			st.triggerTimer.Stop()
		}
		st.triggerTimer = time.AfterFunc(w.cfg.TriggerDebounce, func() {
			w.fireTrigger(ctx, targetID)
		})
	} else if st.overlayActive && !w.parser.ContainsTrigger(text) {
		w.hideOverlay(st, targetID)
	}

	if w.parser.MatchPrewarm(text) {
		if st.prewarmTimer != nil {
			st.prewarmTimer.Stop()
		}
		st.prewarmTimer = time.AfterFunc(w.cfg.PrewarmDebounce, func() {
			w.conn.Send(messaging.NewRequest(messaging.KindPrewarm, w.conn.Origin(targetID)))
		})
	}
}

// fireTrigger runs after the trigger debounce settles. It re-derives the
// query from the live text so only the final state of a keystroke burst is
// sent, and suppresses exact duplicates per target. The context carries the
// target-scoped logger.
func (w *Watcher) fireTrigger(ctx context.Context, targetID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.targets[targetID]
	if !ok {
		return
	}

	query, matched := w.parser.MatchTrigger(st.liveText)
	if !matched {
		return
	}
	if query == st.lastEmitted {
		return
	}

	st.lastEmitted = query
	st.overlayActive = true

	req := messaging.NewSearchRequest(w.conn.Origin(targetID), query, w.cfg.SearchLimit)
	if !w.conn.Send(req) {
		logging.FromContext(ctx).Warn().Msg("search request dropped, coordinator inbox full")
	}
}

// hideOverlay emits the hide instruction and resets duplicate suppression
// so retyping the same query after a dismissal searches again.
func (w *Watcher) hideOverlay(st *targetState, targetID string) {
	if st.triggerTimer != nil {
		st.triggerTimer.Stop()
		st.triggerTimer = nil
	}
	st.overlayActive = false
	st.lastEmitted = ""
	w.conn.Send(messaging.NewRequest(messaging.KindHideOverlay, w.conn.Origin(targetID)))
}

// CurrentQuery reports the query currently matched against a target's live
// text. The overlay uses it as the staleness check for inbound responses.
func (w *Watcher) CurrentQuery(targetID string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.targets[targetID]
	if !ok {
		return "", false
	}
	return w.parser.MatchTrigger(st.liveText)
}

// Close stops all pending timers.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, st := range w.targets {
		if st.triggerTimer != nil {
			st.triggerTimer.Stop()
		}
		if st.prewarmTimer != nil {
			st.prewarmTimer.Stop()
		}
	}
}
