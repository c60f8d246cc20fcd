package plugin

import (
	"context"
	"sync"
)

var testFiles = []File{{Path: "foo", Data: []byte("bar")}}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func record(r *Reporter) *recorder {
	rec := &recorder{}
	r.Subscribe(func(ev Event) {
		rec.mu.Lock()
		rec.events = append(rec.events, ev)
		rec.mu.Unlock()
	})
	return rec
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *recorder) of(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func returning(res Result) Func {
	return func(context.Context, Props) (Result, error) { return res, nil }
}

func failing(err error) Func {
	return func(context.Context, Props) (Result, error) { return Result{}, err }
}

// tag appends name to Values["trail"].
func tag(name string) Runner {
	return New(name, func(_ context.Context, p Props) (Result, error) {
		trail, _ := p.Value("trail")
		s, _ := trail.(string)
		return ValuesResult(map[string]any{"trail": s + name}), nil
	})
}
