package dispatch

import (
	"log/slog"
	"time"
)

type accessStart time.Time

// AccessLog returns a processor that logs every dispatched exchange after
// its action ran.
func AccessLog(logger *slog.Logger) Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewProcessor("access_log",
		func(ex *Exchange) {
			SetValue(ex, accessStart(time.Now()))
		},
		func(ex *Exchange) {
			attrs := []slog.Attr{
				slog.String("method", string(ex.Method())),
				slog.String("path", ex.Path()),
				slog.String("route", ex.Template()),
				slog.Int("status", ex.Status()),
				slog.Int("size", len(ex.Body())),
				slog.String("remote", ex.Request().RemoteAddr),
			}
			if start, ok := GetValue[accessStart](ex.Context()); ok {
				attrs = append(attrs, slog.Duration("latency", time.Since(time.Time(start))))
			}
			if id := GetRequestID(ex); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			logger.LogAttrs(ex.Context(), slog.LevelInfo, "request", attrs...)
		},
	)
}
