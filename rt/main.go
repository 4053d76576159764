package rt

import (
	"context"
	"fmt"
	"os"
	"time"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

var (
	// ScopePause is waited at the end of every scope block.
	ScopePause = 50 * time.Millisecond

	// FlushDelay lets spawned tasks finish their work after main returns.
	FlushDelay = 100 * time.Millisecond
)

// Pause sleeps for ScopePause or until ctx is done.
func Pause(ctx context.Context) {
	t := time.NewTimer(ScopePause)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Infra calls a service bounding it with timeout milliseconds.
// Arguments are passed as text.
func Infra(ctx context.Context, timeout int64, svc, method string, args ...string) Value {
	name := svc + "." + method

	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	res := make(chan Value, 1)
	pan := make(chan interface{}, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				pan <- p
			}
		}()

		res <- Invoke(ctx, name, ToValues(args)...)
	}()

	select {
	case v := <-res:
		return v
	case p := <-pan:
		panic(p)
	case <-ctx.Done():
	}

	fail(name, errors.Wrap(ErrTimeout, "%dms", timeout))

	return Value{}
}

// Main runs a program entry point.
// A Failure escaping it is printed and the process exits with code 1.
func Main(f func(ctx context.Context)) {
	os.Exit(Run(context.Background(), DefaultEnv(), f))
}

// Run runs f in e and returns the process exit code.
func Run(ctx context.Context, e *Env, f func(ctx context.Context)) (code int) {
	defer func() {
		_ = e.Close()
	}()

	ctx = WithEnv(ctx, e)

	defer func() {
		p := recover()
		if p == nil {
			return
		}

		tlog.Printw("program failed", "err", p, "", tlog.Error)

		fmt.Fprintln(e.Out, e.paint(red, fmt.Sprintf("runtime failure: %v", p)))

		code = 1
	}()

	f(ctx)

	time.Sleep(FlushDelay)

	return 0
}
