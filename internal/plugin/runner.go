package plugin

import (
	"context"
	"fmt"
)

// Func is the transform a plugin wraps.
type Func func(ctx context.Context, p Props) (Result, error)

// Runner is an invocable pipeline step.
type Runner func(ctx context.Context, p Props) (Props, error)

// New wraps fn into a Runner named name.
//
// The runner emits start before calling fn and exactly one of done or error
// afterwards. On failure the original error goes out on the error event and
// the runner returns ErrReported or ErrSilentAbort instead. A runner invoked
// with a done ctx fails with ctx.Err() without calling fn.
func New(name string, fn Func) Runner {
	if name == "" {
		panic("plugin: empty name")
	}
	if fn == nil {
		panic("plugin: nil func for " + name)
	}
	return func(ctx context.Context, p Props) (Props, error) {
		p.Reporter.Emit(Event{Kind: EventStart, Plugin: name})

		var res Result
		err := ctx.Err()
		if err == nil {
			res, err = call(ctx, fn, p.bind(name))
		}
		if err != nil {
			p.Reporter.Emit(Event{Kind: EventError, Plugin: name, Err: err})
			return Props{}, sentinelFor(err)
		}

		out := p.merge(res)
		p.Reporter.Emit(Event{Kind: EventDone, Plugin: name})
		return out, nil
	}
}

func call(ctx context.Context, fn Func, p Props) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, p)
}
