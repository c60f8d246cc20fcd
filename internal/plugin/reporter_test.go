package plugin

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReporter_OnFiltersByKind(t *testing.T) {
	r := NewReporter()
	var starts, all int
	r.On(EventStart, func(Event) { starts++ })
	r.Subscribe(func(Event) { all++ })

	r.Emit(Event{Kind: EventStart, Plugin: "a"})
	r.Emit(Event{Kind: EventDone, Plugin: "a"})

	assert.Equal(t, 1, starts)
	assert.Equal(t, 2, all)
}

func TestReporter_ListenersRunInRegistrationOrder(t *testing.T) {
	r := NewReporter()
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		r.Subscribe(func(Event) { order = append(order, i) })
	}
	r.Emit(Event{Kind: EventMessage})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestReporter_Unsubscribe(t *testing.T) {
	r := NewReporter()
	n := 0
	stop := r.On(EventFile, func(Event) { n++ })
	r.Emit(Event{Kind: EventFile})
	stop()
	r.Emit(Event{Kind: EventFile})
	assert.Equal(t, 1, n)
}

func TestReporter_StampsRunID(t *testing.T) {
	r := NewReporter()
	assert.NotEqual(t, uuid.Nil, r.RunID())
	assert.NotEqual(t, r.RunID(), NewReporter().RunID())

	var got Event
	r.Subscribe(func(ev Event) { got = ev })
	r.Emit(Event{Kind: EventDone, Plugin: "x"})
	assert.Equal(t, r.RunID(), got.RunID)
	assert.False(t, got.Time.IsZero())
}

func TestReporter_ErrorWithoutListeners(t *testing.T) {
	assert.NotPanics(t, func() { NewReporter().Emit(Event{Kind: EventError}) })
	var nilReporter *Reporter
	assert.NotPanics(t, func() { nilReporter.Emit(Event{Kind: EventError}) })
	assert.Equal(t, uuid.Nil, nilReporter.RunID())
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "start", EventStart.String())
	assert.Equal(t, "file", EventFile.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
