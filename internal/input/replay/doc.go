// Package replay emits resolved key bindings and wheel gestures through an
// inject.Injector.
//
// A Replayer never blocks its caller on timed work. Chords (a press with no
// hold) are emitted immediately and atomically with respect to other chords.
// Held presses and scroll sequences run on their own goroutine and are
// returned as a Task that can be awaited or cancelled:
//
//	r := replay.New(injector)
//	task := r.Press(key.LeftControl, key.KeyA, 500*time.Millisecond)
//	task.Wait()
//
// Cancelling a task cuts its remaining waits short but still releases every
// key it pressed, so no key is left held down.
//
// # Ordering
//
// Overlapping tasks are not serialized. Two held presses of the same binding
// may interleave their key-down and key-up events.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package replay
