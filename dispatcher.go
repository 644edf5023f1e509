package dispatch

import (
	"fmt"
	"log/slog"
	"sync"
)

// Dispatcher resolves an exchange to its action and runs it between the
// processor hooks.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	headers  []Header

	mu         sync.RWMutex
	processors []Processor
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the logger used for internal faults.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithDefaultHeaders sets the headers applied to responses of actions that
// do not implement HeaderProvider.
func WithDefaultHeaders(headers ...Header) DispatcherOption {
	return func(d *Dispatcher) {
		d.headers = append(d.headers, headers...)
	}
}

// NewDispatcher returns a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher reads.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Use appends processors. Hooks run in the order processors were added.
func (d *Dispatcher) Use(p ...Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processors = append(d.processors, p...)
}

// Processors returns the registered processors in order.
func (d *Dispatcher) Processors() []Processor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Processor, len(d.processors))
	copy(out, d.processors)
	return out
}

// Dispatch looks up the route for the exchange's method and template and
// runs its action. It returns ErrNotFound on a lookup miss and
// ErrUnknownAction when the route names an action that is not registered.
// Panics raised by actions or processors are not recovered.
func (d *Dispatcher) Dispatch(ex *Exchange) error {
	m := ex.Method()
	tmpl := ex.Template()

	route, ok := d.registry.Lookup(m, tmpl)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, m, tmpl)
	}

	a, ok := d.registry.Action(route.Action)
	if !ok {
		d.logger.Error("registry inconsistency",
			"method", string(m),
			"template", tmpl,
			"action", route.Action,
		)
		return fmt.Errorf("%w: %q for %s", ErrUnknownAction, route.Action, route.Path)
	}

	d.run(a, ex)
	return nil
}

func (d *Dispatcher) run(a Action, ex *Exchange) {
	procs := d.Processors()

	for _, p := range procs {
		p.Preprocess(ex)
	}

	Invoke(a, ex)

	for _, p := range procs {
		p.Postprocess(ex)
	}

	if hp, ok := a.(HeaderProvider); ok {
		ApplyHeaders(ex, hp.Headers())
		return
	}
	ApplyHeaders(ex, d.headers)
}
