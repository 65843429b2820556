package replay

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/deckmacro/internal/input/inject"
	"github.com/dshills/deckmacro/internal/input/key"
)

func newTestReplayer(t *testing.T, opts ...Option) (*Replayer, *inject.Recorder) {
	t.Helper()
	rec := inject.NewRecorder()
	r := New(rec, append([]Option{WithTickSpacing(0)}, opts...)...)
	t.Cleanup(r.Close)
	return r, rec
}

// chordRecorder records whole chords so atomic delegation can be checked.
type chordRecorder struct {
	*inject.Recorder
	mu     sync.Mutex
	chords int
}

func (c *chordRecorder) Chord(mods []key.Code, code key.Code) error {
	c.mu.Lock()
	c.chords++
	c.mu.Unlock()
	for _, m := range mods {
		_ = c.KeyDown(m)
	}
	_ = c.KeyDown(code)
	_ = c.KeyUp(code)
	for i := len(mods) - 1; i >= 0; i-- {
		_ = c.KeyUp(mods[i])
	}
	return nil
}

func TestPressChord(t *testing.T) {
	r, rec := newTestReplayer(t)

	task := r.Press(key.LeftControl|key.LeftShift, key.KeyA, 0)
	assert.True(t, task.IsDone(), "chord task should be complete on return")
	assert.Equal(t, []string{
		"down:LControl", "down:LShift", "down:A", "up:A", "up:LShift", "up:LControl",
	}, rec.Strings())
}

func TestPressChordNoKey(t *testing.T) {
	r, rec := newTestReplayer(t)

	r.Press(key.NoModifiers, key.None, 0).Wait()
	assert.Zero(t, rec.Len(), "empty binding is a no-op")

	r.Press(key.RightAlt, key.None, 0).Wait()
	assert.Equal(t, []string{"down:RAlt", "up:RAlt"}, rec.Strings())
}

func TestPressChordDelegatesToChorder(t *testing.T) {
	inj := &chordRecorder{Recorder: inject.NewRecorder()}
	r := New(inj)
	defer r.Close()

	r.Press(key.LeftAlt, key.F1+3, 0)
	assert.Equal(t, 1, inj.chords)
	assert.Equal(t, []string{"down:LAlt", "down:F4", "up:F4", "up:LAlt"}, inj.Strings())
}

func TestPressChordsDoNotInterleave(t *testing.T) {
	r, rec := newTestReplayer(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Press(key.LeftControl, key.KeyA, 0)
		}()
	}
	wg.Wait()

	events := rec.Strings()
	require.Len(t, events, 80)
	want := []string{"down:LControl", "down:A", "up:A", "up:LControl"}
	for i := 0; i < len(events); i += 4 {
		assert.Equal(t, want, events[i:i+4])
	}
}

func TestPressHoldDoesNotBlock(t *testing.T) {
	r, rec := newTestReplayer(t)

	start := time.Now()
	task := r.Press(key.LeftShift, key.KeyA, 50*time.Millisecond)
	assert.Less(t, time.Since(start), 40*time.Millisecond)
	assert.False(t, task.IsDone())

	task.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, []string{"down:LShift", "down:A", "up:A", "up:LShift"}, rec.Strings())

	events := rec.Events()
	assert.GreaterOrEqual(t, events[2].At.Sub(events[1].At), 50*time.Millisecond)
}

func TestPressHoldCancelReleasesKeys(t *testing.T) {
	r, rec := newTestReplayer(t)

	task := r.Press(key.LeftControl, key.KeyA, time.Hour)
	require.Eventually(t, func() bool { return rec.Len() == 2 }, time.Second, time.Millisecond)

	task.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, task.WaitContext(ctx))
	assert.Equal(t, []string{"down:LControl", "down:A", "up:A", "up:LControl"}, rec.Strings())
}

func TestScroll(t *testing.T) {
	r, rec := newTestReplayer(t)

	var calls atomic.Int32
	task := r.Scroll(ScrollRequest{
		Direction:   Down,
		Ticks:       3,
		Modifiers:   key.LeftControl,
		Code:        key.KeyZ,
		OnTicksDone: func(time.Time) { calls.Add(1) },
	})
	task.Wait()

	assert.Equal(t, []string{
		"down:LControl", "down:Z",
		"scroll:-1", "scroll:-1", "scroll:-1",
		"up:Z", "up:LControl",
	}, rec.Strings())
	assert.Equal(t, int32(1), calls.Load())
}

func TestScrollUpWithoutKey(t *testing.T) {
	r, rec := newTestReplayer(t)

	r.Scroll(ScrollRequest{Direction: Up, Ticks: 2, Modifiers: key.RightShift}).Wait()
	assert.Equal(t, []string{"down:RShift", "scroll:+1", "scroll:+1", "up:RShift"}, rec.Strings())
}

func TestScrollSpacingAndSettle(t *testing.T) {
	rec := inject.NewRecorder()
	r := New(rec, WithTickSpacing(10*time.Millisecond))
	defer r.Close()

	start := time.Now()
	var ticksDone time.Time
	task := r.Scroll(ScrollRequest{
		Direction:   Up,
		Ticks:       4,
		Modifiers:   key.LeftAlt,
		Settle:      20 * time.Millisecond,
		OnTicksDone: func(at time.Time) { ticksDone = at },
	})
	assert.Less(t, time.Since(start), 15*time.Millisecond, "scroll must not block")
	task.Wait()

	// settle + 4 ticks of spacing before the callback, another settle after.
	assert.GreaterOrEqual(t, ticksDone.Sub(start), 60*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, 4, rec.Count(inject.KindScroll, key.None))
}

func TestScrollCancelSkipsTicks(t *testing.T) {
	rec := inject.NewRecorder()
	r := New(rec, WithTickSpacing(time.Hour))
	defer r.Close()

	task := r.Scroll(ScrollRequest{Direction: Up, Ticks: 10, Modifiers: key.LeftShift})
	require.Eventually(t, func() bool { return rec.Len() == 1 }, time.Second, time.Millisecond)
	task.Cancel()
	task.Wait()

	assert.Equal(t, []string{"down:LShift", "up:LShift"}, rec.Strings())
}

func TestCloseCancelsAndRejects(t *testing.T) {
	rec := inject.NewRecorder()
	r := New(rec)

	task := r.Press(key.LeftWindows, key.KeyA, time.Hour)
	require.Eventually(t, func() bool { return rec.Len() == 2 }, time.Second, time.Millisecond)

	r.Close()
	assert.True(t, task.IsDone())
	assert.Equal(t, 4, rec.Len())

	assert.True(t, r.Press(key.LeftShift, key.KeyA, time.Second).IsDone())
	r.Press(key.LeftShift, key.KeyA, 0)
	assert.Equal(t, 4, rec.Len(), "closed replayer emits nothing")
}

func TestWaitAwaitsAllTasks(t *testing.T) {
	r, rec := newTestReplayer(t)

	for i := 0; i < 5; i++ {
		r.Press(key.NoModifiers, key.KeyA, 5*time.Millisecond)
	}
	r.Wait()
	assert.Equal(t, 5, rec.Count(inject.KindKeyUp, key.KeyA))
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, Down, ParseDirection("Down"))
	assert.Equal(t, Down, ParseDirection(" down "))
	assert.Equal(t, Up, ParseDirection("Up"))
	assert.Equal(t, Up, ParseDirection(""))
	assert.Equal(t, Up, ParseDirection("sideways"))
	assert.Equal(t, "Down", Down.String())
	assert.Equal(t, "Up", Up.String())
}

// failingInjector fails every call.
type failingInjector struct{}

func (failingInjector) KeyDown(key.Code) error   { return inject.ErrUnavailable }
func (failingInjector) KeyUp(key.Code) error     { return inject.ErrUnavailable }
func (failingInjector) ScrollVertical(int) error { return inject.ErrUnavailable }

func TestMetricsCounts(t *testing.T) {
	r, _ := newTestReplayer(t)

	r.Press(key.LeftShift, key.KeyA, 0)
	r.Press(key.NoModifiers, key.CodeFromName("B"), 5*time.Millisecond).Wait()
	r.Scroll(ScrollRequest{Direction: Down, Ticks: 3}).Wait()

	snap := r.Metrics().Snapshot()
	assert.Equal(t, uint64(2), snap.PressesTotal)
	assert.Equal(t, uint64(1), snap.GesturesTotal)
	assert.Equal(t, uint64(3), snap.TicksTotal)
	assert.Zero(t, snap.CancelledTotal)
	assert.Zero(t, snap.InjectorErrors)
	assert.True(t, r.Metrics().HealthCheck(time.Second).Healthy)
}

func TestMetricsCancelled(t *testing.T) {
	r, _ := newTestReplayer(t, WithTickSpacing(50*time.Millisecond))

	hold := r.Press(key.NoModifiers, key.KeyA, time.Hour)
	scroll := r.Scroll(ScrollRequest{Direction: Up, Ticks: 100})
	time.Sleep(20 * time.Millisecond)
	hold.Cancel()
	scroll.Cancel()
	r.Wait()

	snap := r.Metrics().Snapshot()
	assert.Equal(t, uint64(2), snap.CancelledTotal)
	assert.Less(t, snap.TicksTotal, uint64(100))
}

func TestMetricsInjectorErrors(t *testing.T) {
	r := New(failingInjector{})
	defer r.Close()

	r.Press(key.LeftControl, key.CodeFromName("C"), 0)

	m := r.Metrics()
	assert.Equal(t, uint64(4), m.Snapshot().InjectorErrors)
	health := m.HealthCheck(time.Second)
	assert.False(t, health.Healthy)
	assert.Equal(t, "injector errors detected", health.Message)

	m.Reset()
	assert.Equal(t, MetricsSnapshot{}, zeroUptime(m.Snapshot()))
}

func zeroUptime(s MetricsSnapshot) MetricsSnapshot {
	s.Uptime = 0
	return s
}

func TestMetricsLatency(t *testing.T) {
	m := NewMetrics()
	for i := 1; i <= 100; i++ {
		m.RecordEmit(time.Duration(i) * time.Millisecond)
	}

	snap := m.Snapshot()
	assert.Equal(t, 100*time.Millisecond, snap.MaxEmitLatency)
	assert.Equal(t, 100*time.Millisecond, snap.PeakEmitLatency)
	assert.Equal(t, 100*time.Millisecond, snap.P99EmitLatency)
	assert.Equal(t, 50500*time.Microsecond, snap.AvgEmitLatency)

	health := m.HealthCheck(10 * time.Millisecond)
	assert.False(t, health.Healthy)
	assert.Equal(t, "latency threshold exceeded", health.Message)
}

func TestMetricsHealthIgnoresSingleOutlier(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 200; i++ {
		m.RecordEmit(time.Millisecond)
	}
	m.RecordEmit(100 * time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, 100*time.Millisecond, snap.PeakEmitLatency)
	assert.Equal(t, time.Millisecond, snap.P99EmitLatency)

	health := m.HealthCheck(10 * time.Millisecond)
	assert.True(t, health.Healthy)
	assert.Equal(t, time.Millisecond, health.P99Latency)
}
