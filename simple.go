package dispatch

import (
	"maps"
	"slices"
)

// SimpleAction is an action built from a single callback and plain data,
// for ad-hoc handlers that do not warrant their own type. The callback sees
// every verb; it replaces the per-verb hooks.
type SimpleAction struct {
	name     string
	callback func(*Exchange)
	routes   []Path
	docs     Docs
	headers  []Header
}

// SimpleOption configures a SimpleAction.
type SimpleOption func(*SimpleAction)

// WithRoutes sets the routes the action declares.
func WithRoutes(paths ...Path) SimpleOption {
	return func(a *SimpleAction) {
		a.routes = append(a.routes, paths...)
	}
}

// WithSummary sets the summary for p.
func WithSummary(p Path, summary string) SimpleOption {
	return func(a *SimpleAction) {
		if a.docs.Summaries == nil {
			a.docs.Summaries = make(map[Path]string)
		}
		a.docs.Summaries[p] = summary
	}
}

// WithDescription sets the description for p.
func WithDescription(p Path, desc string) SimpleOption {
	return func(a *SimpleAction) {
		if a.docs.Descriptions == nil {
			a.docs.Descriptions = make(map[Path]string)
		}
		a.docs.Descriptions[p] = desc
	}
}

// WithTags adds tags for p.
func WithTags(p Path, tags ...string) SimpleOption {
	return func(a *SimpleAction) {
		if a.docs.Tags == nil {
			a.docs.Tags = make(map[Path][]string)
		}
		a.docs.Tags[p] = append(a.docs.Tags[p], tags...)
	}
}

// WithInputs adds parameter descriptors for p.
func WithInputs(p Path, inputs ...Input) SimpleOption {
	return func(a *SimpleAction) {
		if a.docs.Inputs == nil {
			a.docs.Inputs = make(map[Path][]Input)
		}
		for _, in := range inputs {
			a.docs.Inputs[p] = append(a.docs.Inputs[p], in.clone())
		}
	}
}

// WithResponses adds possible responses (status → description) for p.
func WithResponses(p Path, responses map[int]string) SimpleOption {
	return func(a *SimpleAction) {
		if a.docs.Responses == nil {
			a.docs.Responses = make(map[Path]map[int]string)
		}
		if a.docs.Responses[p] == nil {
			a.docs.Responses[p] = make(map[int]string)
		}
		maps.Copy(a.docs.Responses[p], responses)
	}
}

// WithHeaders sets the default response headers of the action.
func WithHeaders(headers ...Header) SimpleOption {
	return func(a *SimpleAction) {
		a.headers = append(a.headers, headers...)
	}
}

// NewSimpleAction returns an action named name that hands every exchange
// to fn.
func NewSimpleAction(name string, fn func(*Exchange), opts ...SimpleOption) *SimpleAction {
	a := &SimpleAction{
		name:     name,
		callback: fn,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Action.
func (a *SimpleAction) Name() string { return a.name }

// OnAction implements ActionHandler.
func (a *SimpleAction) OnAction(ex *Exchange) {
	if a.callback != nil {
		a.callback(ex)
	}
}

// Routes implements RouteProvider.
func (a *SimpleAction) Routes() []Path { return slices.Clone(a.routes) }

// Docs implements Documenter.
func (a *SimpleAction) Docs() Docs { return a.docs }

// Headers implements HeaderProvider. A SimpleAction without headers sends
// none, rather than falling back to the dispatcher defaults.
func (a *SimpleAction) Headers() []Header { return slices.Clone(a.headers) }
