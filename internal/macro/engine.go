package macro

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/deckmacro/internal/input/replay"
)

// ActionKind names a macro type offered to the host.
type ActionKind string

const (
	// ActionKeyboard is a keyboard shortcut with optional hold and repeat.
	ActionKeyboard ActionKind = "keyboard"

	// ActionWheel is a mouse-wheel gesture with optional ramp-up.
	ActionWheel ActionKind = "wheel"
)

// ErrUnknownAction indicates the host asked for an action kind this engine
// does not provide.
var ErrUnknownAction = errors.New("unknown action")

// ParseActionKind validates an action name.
func ParseActionKind(s string) (ActionKind, error) {
	switch k := ActionKind(s); k {
	case ActionKeyboard, ActionWheel:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Engine runs macros on behalf of the host.
type Engine struct {
	replayer *replay.Replayer
	repeat   *RepeatController
	ramp     *RampController
	log      *slog.Logger
	now      func() time.Time

	notifyMu sync.RWMutex
	notify   func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithNotifier sets the callback invoked when a binding's visual state
// changes. See also SetNotifier.
func WithNotifier(fn func()) Option {
	return func(e *Engine) {
		e.notify = fn
	}
}

// WithClock sets the clock used for ramp-up cadence.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an engine that replays through r.
func New(r *replay.Replayer, opts ...Option) *Engine {
	e := &Engine{
		replayer: r,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "macro")
	e.repeat = NewRepeatController(e.imageChanged, e.log)
	e.ramp = NewRampController(e.now)
	return e
}

// SetNotifier replaces the visual-state callback.
func (e *Engine) SetNotifier(fn func()) {
	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	e.notify = fn
}

func (e *Engine) imageChanged() {
	e.notifyMu.RLock()
	fn := e.notify
	e.notifyMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Run executes one host invocation of a binding.
// It returns immediately; timed work continues in the background.
func (e *Engine) Run(kind ActionKind, p Params) error {
	switch kind {
	case ActionKeyboard:
		e.RunKeyboard(p)
	case ActionWheel:
		e.RunWheel(p)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, string(kind))
	}
	return nil
}

// RunKeyboard presses the configured shortcut, or toggles its repeat.
func (e *Engine) RunKeyboard(p Params) {
	s := ParseKeyboard(p)
	r := s.Resolve()

	if !s.Repeat {
		e.log.Debug("keyboard press", "binding", r.String(), "hold", s.Hold)
		e.replayer.Press(r.Modifiers, r.Code, s.Hold)
		return
	}

	id := Fingerprint(ActionKeyboard, p)
	running := e.repeat.Toggle(id, s.Interval, func() {
		e.replayer.Press(r.Modifiers, r.Code, s.Hold)
	})
	e.log.Info("keyboard repeat", "binding", s.Label, "running", running, "interval", s.Interval)
}

// RunWheel scrolls with the configured modifiers held, ramping up the
// distance for rapid repeated invocations.
func (e *Engine) RunWheel(p Params) {
	s := ParseWheel(p)
	r := s.Resolve()
	id := Fingerprint(ActionWheel, p)

	ticks := e.ramp.Next(id, s.Direction, s.Clicks, s.MaxMultiplier)
	e.log.Debug("wheel scroll", "binding", r.String(), "direction", s.Direction.String(), "ticks", ticks)

	e.replayer.Scroll(replay.ScrollRequest{
		Direction: s.Direction,
		Ticks:     int(ticks),
		Modifiers: r.Modifiers,
		Code:      r.Code,
		Settle:    s.Settle,
		OnTicksDone: func(time.Time) {
			e.ramp.Finish(id)
		},
	})
}

// Repeating reports whether a keyboard binding's repeat is running.
func (e *Engine) Repeating(p Params) bool {
	return e.repeat.Running(Fingerprint(ActionKeyboard, p))
}

// Label returns the button title for a binding: the key identifier followed
// by "active"/"inactive" for keyboard bindings, or by the wheel direction.
func (e *Engine) Label(kind ActionKind, p Params) string {
	switch kind {
	case ActionKeyboard:
		s := ParseKeyboard(p)
		if e.Repeating(p) {
			return s.Label + " active"
		}
		return s.Label + " inactive"
	case ActionWheel:
		s := ParseWheel(p)
		return s.Label + " " + s.Direction.String()
	default:
		return ""
	}
}

// Wait blocks until every in-flight press and scroll has released its keys.
// Running repeats keep going.
func (e *Engine) Wait() {
	e.replayer.Wait()
}

// Close stops every repeat and cancels in-flight replays. Later runs do
// nothing.
func (e *Engine) Close() {
	e.repeat.StopAll()
	e.replayer.Close()
}
