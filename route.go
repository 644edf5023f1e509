package dispatch

// Visibility controls whether a route or input appears in the generated
// documentation. It never affects dispatch.
type Visibility int

// Visibility values.
const (
	Show Visibility = iota
	Hide
)

func (v Visibility) String() string {
	if v == Hide {
		return "hide"
	}
	return "show"
}

// Route binds a Path to the name of the action that owns it.
type Route struct {
	Path       Path
	Action     string
	Visibility Visibility
}

// Registrar accepts route registrations. Both *Registry and *Server
// implement it.
type Registrar interface {
	RegisterRoute(m Method, r Route) bool
}

// RegisterRoute binds method and template to a. It reports whether the route
// is new; false means it replaced an earlier registration.
func RegisterRoute(reg Registrar, a Action, m Method, template string, vis ...Visibility) bool {
	return RegisterPath(reg, a, NewPath(m, template), vis...)
}

// RegisterPath binds p to a.
func RegisterPath(reg Registrar, a Action, p Path, vis ...Visibility) bool {
	return reg.RegisterRoute(p.Method, Route{
		Path:       p,
		Action:     a.Name(),
		Visibility: visibility(vis),
	})
}

// RegisterPaths binds every path in paths to a.
func RegisterPaths(reg Registrar, a Action, paths []Path, vis ...Visibility) {
	for _, p := range paths {
		RegisterPath(reg, a, p, vis...)
	}
}

func visibility(vis []Visibility) Visibility {
	if len(vis) > 0 {
		return vis[0]
	}
	return Show
}
