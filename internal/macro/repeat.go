package macro

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultRepeatInterval is used when no positive interval is configured.
const DefaultRepeatInterval = time.Second

// repeatState is the per-instance toggle state.
type repeatState struct {
	running  bool
	interval time.Duration
	timer    *repeatTimer
}

// repeatTimer fires a callback periodically until stopped.
type repeatTimer struct {
	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

func startRepeatTimer(interval time.Duration, fire func()) *repeatTimer {
	t := &repeatTimer{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(interval, fire)
	return t
}

func (t *repeatTimer) run(interval time.Duration, fire func()) {
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			fire()
			t.mu.Unlock()
		}
	}
}

// Stop prevents any further tick. A tick that is already firing completes
// before Stop returns.
func (t *repeatTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stop)
}

// RepeatController toggles one periodic replay per binding instance.
type RepeatController struct {
	states *Registry[repeatState]
	notify func()
	log    *slog.Logger

	// closeMu is held shared by Toggle and exclusively by StopAll.
	closeMu sync.RWMutex
	closed  bool
}

// NewRepeatController creates a controller. notify is called after every
// transition; nil disables notification.
func NewRepeatController(notify func(), log *slog.Logger) *RepeatController {
	if notify == nil {
		notify = func() {}
	}
	if log == nil {
		log = slog.Default()
	}
	return &RepeatController{
		states: NewRegistry[repeatState](nil),
		notify: notify,
		log:    log,
	}
}

// Toggle starts the repeat for id if it is idle, or stops it if it is
// running, and returns the new running state.
//
// A started repeat calls fire every interval until toggled off. The interval
// is captured here; later configuration changes apply on the next start.
// Intervals <= 0 use DefaultRepeatInterval. After StopAll, Toggle does
// nothing and reports false.
func (c *RepeatController) Toggle(id InstanceID, interval time.Duration, fire func()) bool {
	if interval <= 0 {
		interval = DefaultRepeatInterval
	}

	c.closeMu.RLock()
	if c.closed {
		c.closeMu.RUnlock()
		return false
	}

	var running bool
	c.states.With(id, func(s *repeatState) {
		if s.running {
			s.timer.Stop()
			s.timer = nil
			s.running = false
		} else {
			s.interval = interval
			s.timer = startRepeatTimer(interval, fire)
			s.running = true
		}
		running = s.running
	})
	c.closeMu.RUnlock()

	c.log.Debug("repeat toggled", "instance", id.String(), "running", running, "interval", interval)
	c.notify()
	return running
}

// Running reports whether id is repeating.
func (c *RepeatController) Running(id InstanceID) bool {
	var running bool
	c.states.Peek(id, func(s *repeatState) {
		running = s.running
	})
	return running
}

// Interval returns the interval id was last started with.
func (c *RepeatController) Interval(id InstanceID) time.Duration {
	var d time.Duration
	c.states.Peek(id, func(s *repeatState) {
		d = s.interval
	})
	return d
}

// StopAll stops every running repeat without notifying. Later toggles
// are ignored.
func (c *RepeatController) StopAll() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	c.closed = true

	c.states.Range(func(_ InstanceID, s *repeatState) {
		if s.running {
			s.timer.Stop()
			s.timer = nil
			s.running = false
		}
	})
}
