package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_ThreadsPropsInOrder(t *testing.T) {
	got, err := Sequence(tag("a"), tag("b"), tag("c"))(context.Background(), Props{Reporter: NewReporter()})
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Values["trail"])
}

func TestSequence_Empty(t *testing.T) {
	in := Props{Files: testFiles, Reporter: NewReporter(), Values: map[string]any{"k": 1}}
	got, err := Sequence()(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSequence_StopsAtFirstFailure(t *testing.T) {
	reporter := NewReporter()
	rec := record(reporter)
	called := false
	last := New("last", func(context.Context, Props) (Result, error) {
		called = true
		return Result{}, nil
	})

	_, err := Sequence(tag("a"), New("bad", failing(errors.New("oops"))), last)(context.Background(), Props{Reporter: reporter})

	assert.Same(t, ErrReported, err)
	assert.False(t, called, "no runner after the failure may run")
	assert.Equal(t, []EventKind{EventStart, EventDone, EventStart, EventError}, rec.kinds())
}

func TestSequence_PropagatesSilentAbort(t *testing.T) {
	_, err := Sequence(tag("a"), New("prompt", failing(ErrCancel)))(context.Background(), Props{Reporter: NewReporter()})
	assert.Same(t, ErrSilentAbort, err)
}

func TestSequence_Associative(t *testing.T) {
	a, b, c := tag("a"), tag("b"), tag("c")
	in := Props{Files: testFiles, Reporter: NewReporter(), Values: map[string]any{"trail": ">"}}

	left, err := Sequence(a, Sequence(b, c))(context.Background(), in)
	require.NoError(t, err)
	right, err := Sequence(Sequence(a, b), c)(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, left, right)
	assert.Equal(t, ">abc", left.Values["trail"])
}

func TestSequence_EventsPerPluginInOrder(t *testing.T) {
	reporter := NewReporter()
	rec := record(reporter)
	_, err := Sequence(tag("a"), tag("b"))(context.Background(), Props{Reporter: reporter})
	require.NoError(t, err)

	var got []string
	for _, ev := range rec.events {
		got = append(got, ev.Plugin+":"+ev.Kind.String())
	}
	assert.Equal(t, []string{"a:start", "a:done", "b:start", "b:done"}, got)
}

func TestSequence_DoesNotAliasRunnerSlice(t *testing.T) {
	runners := []Runner{tag("a")}
	seq := Sequence(runners...)
	runners[0] = New("z", failing(errors.New("swapped")))
	_, err := seq(context.Background(), Props{})
	assert.NoError(t, err)
}

func TestSequence_StopsOnceContextIsCancelled(t *testing.T) {
	reporter := NewReporter()
	rec := record(reporter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := New("first", func(context.Context, Props) (Result, error) {
		cancel()
		return Result{}, nil
	})
	secondRan := false
	second := New("second", func(context.Context, Props) (Result, error) {
		secondRan = true
		return Result{}, nil
	})

	_, err := Sequence(first, second)(ctx, Props{Reporter: reporter})

	assert.Same(t, ErrReported, err)
	assert.False(t, secondRan)
	assert.Equal(t, []EventKind{EventStart, EventDone, EventStart, EventError}, rec.kinds())
}
