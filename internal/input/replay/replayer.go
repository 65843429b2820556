package replay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/deckmacro/internal/input/inject"
	"github.com/dshills/deckmacro/internal/input/key"
)

// DefaultTickSpacing is the wait before each wheel click.
const DefaultTickSpacing = 10 * time.Millisecond

// Replayer emits key presses and wheel gestures.
type Replayer struct {
	inj         inject.Injector
	log         *slog.Logger
	tickSpacing time.Duration
	metrics     *Metrics

	// chordMu keeps chords from interleaving with each other.
	chordMu sync.Mutex

	mu     sync.Mutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Replayer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithTickSpacing sets the wait before each wheel click.
func WithTickSpacing(d time.Duration) Option {
	return func(r *Replayer) {
		if d >= 0 {
			r.tickSpacing = d
		}
	}
}

// New creates a replayer that emits through inj.
func New(inj inject.Injector, opts ...Option) *Replayer {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Replayer{
		inj:         inj,
		log:         slog.Default(),
		tickSpacing: DefaultTickSpacing,
		metrics:     NewMetrics(),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "replay")
	return r
}

// Press presses code with mods held.
//
// With hold == 0 the chord is emitted before Press returns and the returned
// Task is already done. With hold > 0 the key is held for hold on a separate
// goroutine and Press returns immediately.
func (r *Replayer) Press(mods key.Modifier, code key.Code, hold time.Duration) *Task {
	if hold <= 0 {
		r.chord(mods.Codes(), code)
		return completedTask()
	}

	return r.spawn(func(ctx context.Context) {
		r.metrics.RecordPress()
		codes := mods.Codes()
		r.metrics.timeEmit(func() { r.down(codes, code) })
		if !sleep(ctx, hold) {
			r.metrics.RecordCancelled()
		}
		r.metrics.timeEmit(func() { r.up(codes, code) })
	})
}

// ScrollRequest describes one wheel gesture.
type ScrollRequest struct {
	// Direction of the wheel clicks.
	Direction Direction

	// Ticks is the number of wheel clicks.
	Ticks int

	// Modifiers are held for the whole gesture.
	Modifiers key.Modifier

	// Code is an optional non-modifier key held with the modifiers.
	Code key.Code

	// Settle is the wait after pressing and before releasing the keys.
	Settle time.Duration

	// OnTicksDone, if set, is called once the last click was emitted (or the
	// gesture was cancelled), before the trailing settle wait.
	OnTicksDone func(at time.Time)
}

// Scroll runs a wheel gesture on a separate goroutine and returns immediately.
func (r *Replayer) Scroll(req ScrollRequest) *Task {
	return r.spawn(func(ctx context.Context) {
		codes := req.Modifiers.Codes()
		r.metrics.timeEmit(func() { r.down(codes, req.Code) })
		sleep(ctx, req.Settle)

		delta := int(req.Direction)
		if delta == 0 {
			delta = int(Up)
		}
		emitted := 0
		for ; emitted < req.Ticks; emitted++ {
			if !sleep(ctx, r.tickSpacing) {
				break
			}
			r.report("scroll", r.inj.ScrollVertical(delta))
		}
		r.metrics.RecordGesture(emitted)
		if emitted < req.Ticks {
			r.metrics.RecordCancelled()
		}
		if req.OnTicksDone != nil {
			req.OnTicksDone(time.Now())
		}

		sleep(ctx, req.Settle)
		r.metrics.timeEmit(func() { r.up(codes, req.Code) })
	})
}

// Metrics returns the replay counters.
func (r *Replayer) Metrics() *Metrics {
	return r.metrics
}

// Wait blocks until every running task has finished.
func (r *Replayer) Wait() {
	r.wg.Wait()
}

// Close cancels running tasks and waits for them to release their keys.
// Later calls to Press and Scroll do nothing.
func (r *Replayer) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

func (r *Replayer) spawn(fn func(ctx context.Context)) *Task {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return completedTask()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	task := newTask(cancel)
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer close(task.done)
		defer cancel()
		fn(ctx)
	}()
	return task
}

func (r *Replayer) chord(mods []key.Code, code key.Code) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	r.chordMu.Lock()
	defer r.chordMu.Unlock()

	r.metrics.RecordPress()
	start := time.Now()
	defer func() { r.metrics.RecordEmit(time.Since(start)) }()

	if c, ok := r.inj.(inject.Chorder); ok {
		r.report("chord", c.Chord(mods, code))
		return
	}
	r.down(mods, code)
	r.up(mods, code)
}

// down presses mods in order, then code.
func (r *Replayer) down(mods []key.Code, code key.Code) {
	for _, m := range mods {
		r.report("key down", r.inj.KeyDown(m))
	}
	if code != key.None {
		r.report("key down", r.inj.KeyDown(code))
	}
}

// up releases code, then mods in reverse order.
func (r *Replayer) up(mods []key.Code, code key.Code) {
	if code != key.None {
		r.report("key up", r.inj.KeyUp(code))
	}
	for i := len(mods) - 1; i >= 0; i-- {
		r.report("key up", r.inj.KeyUp(mods[i]))
	}
}

// report logs injector failures. Emission carries on regardless.
func (r *Replayer) report(op string, err error) {
	if err != nil {
		r.metrics.RecordInjectorError()
		r.log.Debug("injector call failed", "op", op, "error", err)
	}
}
