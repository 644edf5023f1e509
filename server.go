package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Server adapts the dispatcher to net/http. It matches request paths against
// route templates, binds path parameters, dispatches, and writes the
// buffered response.
type Server struct {
	registry   *Registry
	dispatcher *Dispatcher
	logger     *slog.Logger
	info       Info
	swagger    bool

	middleware []Middleware
	dispOpts   []DispatcherOption

	swaggerMu sync.Mutex
	docs      *Swagger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. It is also used by the dispatcher.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithInfo sets the API metadata used by the documentation.
func WithInfo(info Info) Option {
	return func(s *Server) {
		s.info = info
	}
}

// WithSwagger enables or disables documentation generation. It is enabled
// by default.
func WithSwagger(enabled bool) Option {
	return func(s *Server) {
		s.swagger = enabled
	}
}

// WithHeaders sets the default response headers for actions that do not
// provide their own.
func WithHeaders(headers ...Header) Option {
	return func(s *Server) {
		s.dispOpts = append(s.dispOpts, WithDefaultHeaders(headers...))
	}
}

// WithMiddleware adds transport middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// New creates a Server with an empty registry.
func New(opts ...Option) *Server {
	s := &Server{
		registry: NewRegistry(),
		logger:   slog.Default(),
		swagger:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	dispOpts := append([]DispatcherOption{WithDispatchLogger(s.logger)}, s.dispOpts...)
	s.dispatcher = NewDispatcher(s.registry, dispOpts...)
	return s
}

// Registry returns the server's registry.
func (s *Server) Registry() *Registry { return s.registry }

// Dispatcher returns the server's dispatcher.
func (s *Server) Dispatcher() *Dispatcher { return s.dispatcher }

// Add registers an action and the routes it declares.
func (s *Server) Add(a Action) error {
	if err := s.registry.Add(a); err != nil {
		return err
	}
	s.logger.Debug("action registered", "action", a.Name(), "routes", len(routesOf(a)))
	return nil
}

// MustAdd is like Add but panics on error. For use during startup.
func (s *Server) MustAdd(a Action) {
	if err := s.Add(a); err != nil {
		panic(err)
	}
}

// RegisterRoute implements Registrar.
func (s *Server) RegisterRoute(m Method, r Route) bool {
	return s.registry.RegisterRoute(m, r)
}

// Use adds processors to the dispatcher.
func (s *Server) Use(p ...Processor) {
	s.dispatcher.Use(p...)
}

// UseMiddleware adds transport middleware.
func (s *Server) UseMiddleware(mw ...Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// ServeSwagger takes the documentation snapshot and registers the swagger
// action. Call it after every other action has been registered.
func (s *Server) ServeSwagger(opts ...SwaggerOption) (*Swagger, error) {
	s.swaggerMu.Lock()
	defer s.swaggerMu.Unlock()

	all := []SwaggerOption{WithSwaggerLogger(s.logger)}
	if !s.swagger {
		all = append(all, WithDisabled())
	}
	all = append(all, opts...)

	sw := NewSwagger(s.registry, s.info, all...)
	if err := s.registry.Add(sw); err != nil {
		return nil, err
	}
	s.docs = sw
	return sw, nil
}

// Swagger returns the documentation action, or nil before ServeSwagger.
func (s *Server) Swagger() *Swagger {
	s.swaggerMu.Lock()
	defer s.swaggerMu.Unlock()
	return s.docs
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(http.HandlerFunc(s.serve))
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

func (s *Server) serve(w http.ResponseWriter, req *http.Request) {
	ex := NewExchange(req)
	if tmpl, params, ok := s.match(ex.Method(), ex.Path()); ok {
		ex.Bind(tmpl, params)
	}

	if err := s.dispatcher.Dispatch(ex); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(req.Context(), "dispatch failed", "err", err)
		}
		writeProblem(w, req, err)
		return
	}

	if err := ex.Send(w); err != nil {
		s.logger.DebugContext(req.Context(), "response write failed", "err", err)
	}
}

// match finds the template serving path. An exact template wins; otherwise
// the placeholder template with the most literal segments wins, ties going
// to the earliest registration.
func (s *Server) match(m Method, path string) (string, map[string]string, bool) {
	if _, ok := s.registry.Lookup(m, path); ok {
		return path, nil, true
	}

	best, bestLit := "", -1
	var bestVars map[string]string
	for _, r := range s.registry.Routes(m) {
		params, ok := matchTemplate(r.Path.Template, path)
		if !ok {
			continue
		}
		if lit := literalSegments(r.Path.Template); lit > bestLit {
			best, bestVars, bestLit = r.Path.Template, params, lit
		}
	}
	return best, bestVars, bestLit >= 0
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
