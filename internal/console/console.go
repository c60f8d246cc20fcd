package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/flarebyte/taskrun/internal/plugin"
)

// Printer writes reporter events as human readable lines. Messages and
// errors are always shown; start, done and file lines only with Progress.
type Printer struct {
	w        io.Writer
	progress bool
	now      func() time.Time

	mu      sync.Mutex
	started map[string][]time.Time
}

func NewPrinter(w io.Writer, progress bool) *Printer {
	return &Printer{w: w, progress: progress, now: time.Now, started: map[string][]time.Time{}}
}

// Attach subscribes the printer to every event of rep.
func (p *Printer) Attach(rep *plugin.Reporter) (detach func()) {
	return rep.Subscribe(p.handle)
}

func (p *Printer) handle(ev plugin.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev.Kind {
	case plugin.EventStart:
		p.started[ev.Plugin] = append(p.started[ev.Plugin], p.now())
		if p.progress {
			p.printf("%s: start\n", ev.Plugin)
		}
	case plugin.EventDone:
		d := p.elapsed(ev.Plugin)
		if p.progress {
			p.printf("%s: done (%s)\n", ev.Plugin, d.Round(time.Millisecond))
		}
	case plugin.EventError:
		p.elapsed(ev.Plugin)
		if ev.Err == nil || plugin.IsSilent(ev.Err) {
			return
		}
		p.printf("%s: error %s\n", ev.Plugin, ev.Err)
	case plugin.EventMessage:
		p.printf("%s: %s\n", ev.Plugin, ev.Message)
	case plugin.EventFile:
		if p.progress {
			p.printf("%s: file %s\n", ev.Plugin, ev.Path)
		}
	}
}

// elapsed pops the most recent start of name.
func (p *Printer) elapsed(name string) time.Duration {
	st := p.started[name]
	if len(st) == 0 {
		return 0
	}
	t := st[len(st)-1]
	if len(st) == 1 {
		delete(p.started, name)
	} else {
		p.started[name] = st[:len(st)-1]
	}
	return p.now().Sub(t)
}

func (p *Printer) printf(format string, args ...any) {
	if p.w == nil {
		return
	}
	_, _ = fmt.Fprintf(p.w, format, args...)
}
