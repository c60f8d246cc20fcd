package plugin

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a lifecycle or logging event.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventDone
	EventError
	EventMessage
	EventFile
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	case EventFile:
		return "file"
	default:
		return "unknown"
	}
}

// Event is what listeners receive. Message, Path and Err are set only for
// the kinds that carry them.
type Event struct {
	Kind    EventKind
	Plugin  string
	RunID   uuid.UUID
	Time    time.Time
	Message string
	Path    string
	Err     error
}

// Listener receives events synchronously on the emitting goroutine.
type Listener func(Event)

type subscription struct {
	id   int
	kind EventKind // zero means every kind
	fn   Listener
}

// Reporter is the event bus for one pipeline run.
type Reporter struct {
	runID uuid.UUID
	now   func() time.Time

	mu     sync.Mutex
	nextID int
	subs   []subscription
}

// NewReporter returns a Reporter with a fresh run ID.
func NewReporter() *Reporter {
	return &Reporter{runID: uuid.New(), now: time.Now}
}

// RunID identifies the run this reporter belongs to.
func (r *Reporter) RunID() uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	return r.runID
}

// On registers fn for a single event kind.
func (r *Reporter) On(kind EventKind, fn Listener) (unsubscribe func()) {
	return r.add(kind, fn)
}

// Subscribe registers fn for every event kind.
func (r *Reporter) Subscribe(fn Listener) (unsubscribe func()) {
	return r.add(0, fn)
}

func (r *Reporter) add(kind EventKind, fn Listener) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscription{id: id, kind: kind, fn: fn})
	r.mu.Unlock()
	return func() { r.remove(id) }
}

func (r *Reporter) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every matching listener in registration order.
// Emitting on a nil Reporter does nothing.
func (r *Reporter) Emit(ev Event) {
	if r == nil {
		return
	}
	ev.RunID = r.runID
	if ev.Time.IsZero() {
		ev.Time = r.now()
	}

	r.mu.Lock()
	subs := append([]subscription(nil), r.subs...)
	r.mu.Unlock()

	for _, s := range subs {
		if s.kind == 0 || s.kind == ev.Kind {
			s.fn(ev)
		}
	}
}
