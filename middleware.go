package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// Middleware wraps the transport around the dispatcher. Unlike a Processor
// it sees the raw http.ResponseWriter and can stop a request outright.
type Middleware func(next http.Handler) http.Handler

var errPanic = errors.New("panic in request pipeline")

// Recovery returns middleware that turns a panic in an action or processor
// into a 500 problem response. The dispatcher itself never recovers.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeProblem(w, r, errPanic)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit returns middleware that caps request bodies at maxBytes. A
// declared Content-Length over the cap is refused with 413 before dispatch;
// otherwise actions reading past the cap get an error from the body reader.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeProblem(w, r, Errorf(http.StatusRequestEntityTooLarge,
					"request body exceeds %d bytes", maxBytes))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout returns middleware that puts a deadline on the request context.
// Actions are not interrupted; long-running ones should watch
// Exchange.Context.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
