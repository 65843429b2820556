package replay

import (
	"context"
	"time"
)

// Task is a handle to replay work running on its own goroutine.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
}

func newTask(cancel context.CancelFunc) *Task {
	return &Task{done: make(chan struct{}), cancel: cancel}
}

// completedTask returns a Task that has already finished.
func completedTask() *Task {
	t := newTask(func() {})
	close(t.done)
	return t
}

// Done returns a channel that is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task has finished.
func (t *Task) Wait() {
	<-t.done
}

// WaitContext blocks until the task has finished or ctx is done.
func (t *Task) WaitContext(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel cuts the task's remaining waits short. Keys already pressed are
// still released. Safe to call more than once and after completion.
func (t *Task) Cancel() {
	t.cancel()
}

// IsDone returns true if the task has finished.
func (t *Task) IsDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// sleep waits for d and reports whether to continue (false => cancelled).
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
