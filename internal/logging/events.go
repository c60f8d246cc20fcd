package logging

import (
	"context"
	"log/slog"

	"github.com/flarebyte/taskrun/internal/plugin"
)

// Attach logs every reporter event at debug level on l (L() when nil).
func Attach(rep *plugin.Reporter, l *slog.Logger) (detach func()) {
	if l == nil {
		l = L()
	}
	return rep.Subscribe(func(ev plugin.Event) {
		if !l.Enabled(context.Background(), slog.LevelDebug) {
			return
		}
		attrs := []any{
			slog.String("run_id", ev.RunID.String()),
			slog.String("plugin", ev.Plugin),
			slog.String("event", ev.Kind.String()),
		}
		switch ev.Kind {
		case plugin.EventMessage:
			attrs = append(attrs, slog.String("message", ev.Message))
		case plugin.EventFile:
			attrs = append(attrs, slog.String("path", ev.Path))
		case plugin.EventError:
			if ev.Err != nil {
				attrs = append(attrs, slog.String("err", ev.Err.Error()))
			}
			attrs = append(attrs, slog.Bool("silent", plugin.IsSilent(ev.Err)))
		}
		l.Debug("plugin event", attrs...)
	})
}
