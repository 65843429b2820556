package inject

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/deckmacro/internal/input/key"
)

// EventKind identifies a recorded injector call.
type EventKind uint8

const (
	// KindKeyDown is a key press.
	KindKeyDown EventKind = iota
	// KindKeyUp is a key release.
	KindKeyUp
	// KindScroll is a wheel click.
	KindScroll
)

// String returns the kind name.
func (k EventKind) String() string {
	switch k {
	case KindKeyDown:
		return "down"
	case KindKeyUp:
		return "up"
	case KindScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Event is one recorded injector call.
type Event struct {
	Kind  EventKind
	Code  key.Code
	Delta int
	At    time.Time
}

// String returns a compact form like "down:A" or "scroll:-1".
func (e Event) String() string {
	if e.Kind == KindScroll {
		return fmt.Sprintf("scroll:%+d", e.Delta)
	}
	return e.Kind.String() + ":" + e.Code.String()
}

// Recorder is an Injector that records every call in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// KeyDown implements Injector.
func (r *Recorder) KeyDown(code key.Code) error {
	r.record(Event{Kind: KindKeyDown, Code: code})
	return nil
}

// KeyUp implements Injector.
func (r *Recorder) KeyUp(code key.Code) error {
	r.record(Event{Kind: KindKeyUp, Code: code})
	return nil
}

// ScrollVertical implements Injector.
func (r *Recorder) ScrollVertical(delta int) error {
	r.record(Event{Kind: KindScroll, Delta: delta})
	return nil
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.At = r.now()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Strings returns the recorded events in their compact form.
func (r *Recorder) Strings() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}

// Count returns how many events of kind were recorded for code.
// For KindScroll the code is ignored.
func (r *Recorder) Count(kind EventKind, code key.Code) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind != kind {
			continue
		}
		if kind == KindScroll || e.Code == code {
			n++
		}
	}
	return n
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
