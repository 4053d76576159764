package rt

import (
	"context"

	"tlog.app/go/tlog"
)

type (
	// Task is a spawned computation.
	Task struct {
		done chan struct{}

		v Value
		p interface{}
	}
)

// Spawn runs f in its own goroutine and returns immediately.
// The task is not cancelled with the spawning context.
// A panic inside the task is logged and raised again by Await.
func Spawn(ctx context.Context, f func(ctx context.Context) Value) *Task {
	t := &Task{
		done: make(chan struct{}),
	}

	go t.run(context.WithoutCancel(ctx), f)

	return t
}

func (t *Task) run(ctx context.Context, f func(ctx context.Context) Value) {
	defer close(t.done)

	defer func() {
		p := recover()
		if p == nil {
			return
		}

		t.p = p

		tlog.Printw("task failed", "err", p, "", tlog.Error)
	}()

	t.v = f(ctx)
}

// Await blocks until t finishes and returns its result.
func Await(ctx context.Context, t *Task) Value {
	select {
	case <-t.done:
	case <-ctx.Done():
		fail("await", ctx.Err())
	}

	if t.p != nil {
		panic(t.p)
	}

	return t.v
}

// Done reports whether the task has finished.
func (t *Task) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
