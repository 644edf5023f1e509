package dispatch

import (
	"fmt"
	"sync"
)

// Registry holds actions by name and, per method, routes by template. It is
// filled at startup and read by the dispatcher and the documentation
// generator. Late registration while serving is safe but is not reflected in
// documentation snapshots already taken.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
	order   []string
	routes  map[Method]*routeTable
}

// routeTable keeps routes in first-registration order; replacing a template
// keeps its position.
type routeTable struct {
	index  map[string]int
	routes []Route
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
		routes:  make(map[Method]*routeTable),
	}
}

// Add registers a under its name and binds every route it declares as
// visible. Names must be non-empty and unique.
func (r *Registry) Add(a Action) error {
	name := a.Name()
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	if _, ok := r.actions[name]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateAction, name)
	}
	r.actions[name] = a
	r.order = append(r.order, name)
	r.mu.Unlock()

	RegisterPaths(r, a, routesOf(a))
	return nil
}

// RegisterRoute implements Registrar. The template is normalized to start
// with a slash. The last registration for a template wins.
func (r *Registry) RegisterRoute(m Method, route Route) bool {
	route.Path.Method = m
	route.Path = route.Path.normalized()

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.routes[m]
	if !ok {
		t = &routeTable{index: make(map[string]int)}
		r.routes[m] = t
	}

	if i, ok := t.index[route.Path.Template]; ok {
		t.routes[i] = route
		return false
	}
	t.index[route.Path.Template] = len(t.routes)
	t.routes = append(t.routes, route)
	return true
}

// Lookup returns the route registered for m and template.
func (r *Registry) Lookup(m Method, template string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.routes[m]
	if !ok {
		return Route{}, false
	}
	i, ok := t.index[template]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Action returns the action registered under name.
func (r *Registry) Action(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.actions[name]
	return a, ok
}

// Actions returns the registered actions in registration order.
func (r *Registry) Actions() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Action, len(r.order))
	for i, name := range r.order {
		out[i] = r.actions[name]
	}
	return out
}

// Routes returns a copy of the route table for m.
func (r *Registry) Routes(m Method) []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.routes[m]
	if !ok {
		return nil
	}
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}
