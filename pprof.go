package dispatch

import (
	"net/http"
	"net/http/pprof"
)

// Pprof registers the profiling endpoints under prefix (default
// "/debug/pprof") as one hidden action named "pprof". The routes dispatch
// normally but never appear in the documentation.
func Pprof(reg *Registry, prefix string) error {
	if prefix == "" {
		prefix = "/debug/pprof"
	}

	handlers := map[string]http.Handler{
		"/":             http.HandlerFunc(pprof.Index),
		"/cmdline":      http.HandlerFunc(pprof.Cmdline),
		"/profile":      http.HandlerFunc(pprof.Profile),
		"/symbol":       http.HandlerFunc(pprof.Symbol),
		"/trace":        http.HandlerFunc(pprof.Trace),
		"/goroutine":    pprof.Handler("goroutine"),
		"/heap":         pprof.Handler("heap"),
		"/allocs":       pprof.Handler("allocs"),
		"/block":        pprof.Handler("block"),
		"/mutex":        pprof.Handler("mutex"),
		"/threadcreate": pprof.Handler("threadcreate"),
	}

	mux := http.NewServeMux()
	for suffix, h := range handlers {
		mux.Handle(prefix+suffix, h)
	}

	a := NewRawAction("pprof", mux)
	if err := reg.Add(a); err != nil {
		return err
	}
	for suffix := range handlers {
		RegisterRoute(reg, a, MethodGet, prefix+suffix, Hide)
	}
	return nil
}
