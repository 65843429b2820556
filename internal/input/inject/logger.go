package inject

import (
	"log/slog"

	"github.com/dshills/deckmacro/internal/input/key"
)

// Logger wraps an Injector and logs every call at debug level.
type Logger struct {
	next Injector
	log  *slog.Logger
}

// NewLogger wraps next. A nil logger uses slog.Default().
func NewLogger(next Injector, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{next: next, log: log.With("component", "inject")}
}

// KeyDown implements Injector.
func (l *Logger) KeyDown(code key.Code) error {
	err := l.next.KeyDown(code)
	l.log.Debug("key down", "key", code.String(), "error", err)
	return err
}

// KeyUp implements Injector.
func (l *Logger) KeyUp(code key.Code) error {
	err := l.next.KeyUp(code)
	l.log.Debug("key up", "key", code.String(), "error", err)
	return err
}

// ScrollVertical implements Injector.
func (l *Logger) ScrollVertical(delta int) error {
	err := l.next.ScrollVertical(delta)
	l.log.Debug("scroll", "delta", delta, "error", err)
	return err
}

// Chord implements Chorder when the wrapped injector does.
func (l *Logger) Chord(mods []key.Code, code key.Code) error {
	c, ok := l.next.(Chorder)
	if !ok {
		return chordSequence(l, mods, code)
	}
	err := c.Chord(mods, code)
	l.log.Debug("chord", "modifiers", mods, "key", code.String(), "error", err)
	return err
}

// chordSequence emits a chord as individual calls, returning the first error.
func chordSequence(inj Injector, mods []key.Code, code key.Code) error {
	var first error
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}
	for _, m := range mods {
		keep(inj.KeyDown(m))
	}
	if code != key.None {
		keep(inj.KeyDown(code))
		keep(inj.KeyUp(code))
	}
	for i := len(mods) - 1; i >= 0; i-- {
		keep(inj.KeyUp(mods[i]))
	}
	return first
}
