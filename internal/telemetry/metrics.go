package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flarebyte/taskrun/internal/plugin"
)

const namespace = "taskrun"

const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeAborted = "aborted"
)

// Collector turns reporter events into Prometheus metrics on its own
// registry.
type Collector struct {
	reg      *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	files    *prometheus.CounterVec
	messages *prometheus.CounterVec

	now     func() time.Time
	mu      sync.Mutex
	started map[string][]time.Time
}

func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_runs_total",
			Help:      "Plugin invocations by outcome.",
		}, []string{"plugin", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_duration_seconds",
			Help:      "Wall time of plugin invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"plugin"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_files_total",
			Help:      "Files logged by plugins.",
		}, []string{"plugin"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plugin_messages_total",
			Help:      "Messages logged by plugins.",
		}, []string{"plugin"}),
		now:     time.Now,
		started: map[string][]time.Time{},
	}
	c.reg.MustRegister(c.runs, c.duration, c.files, c.messages)
	return c
}

// Attach subscribes the collector to every event of rep.
func (c *Collector) Attach(rep *plugin.Reporter) (detach func()) {
	return rep.Subscribe(c.handle)
}

func (c *Collector) handle(ev plugin.Event) {
	switch ev.Kind {
	case plugin.EventStart:
		c.mu.Lock()
		c.started[ev.Plugin] = append(c.started[ev.Plugin], c.now())
		c.mu.Unlock()
	case plugin.EventDone:
		c.finish(ev.Plugin, OutcomeOK)
	case plugin.EventError:
		outcome := OutcomeFailed
		if plugin.IsSilent(ev.Err) {
			outcome = OutcomeAborted
		}
		c.finish(ev.Plugin, outcome)
	case plugin.EventFile:
		c.files.WithLabelValues(ev.Plugin).Inc()
	case plugin.EventMessage:
		c.messages.WithLabelValues(ev.Plugin).Inc()
	}
}

func (c *Collector) finish(name, outcome string) {
	c.runs.WithLabelValues(name, outcome).Inc()
	c.mu.Lock()
	st := c.started[name]
	if len(st) == 0 {
		c.mu.Unlock()
		return
	}
	t := st[len(st)-1]
	c.started[name] = st[:len(st)-1]
	c.mu.Unlock()
	c.duration.WithLabelValues(name).Observe(c.now().Sub(t).Seconds())
}

// WriteFile stores the registry in the Prometheus text format.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}
