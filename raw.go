package dispatch

import "net/http"

// RawAction runs a plain net/http handler as an action. The handler writes
// into the exchange, which implements http.ResponseWriter; it is the escape
// hatch for code written against the standard library.
type RawAction struct {
	name    string
	handler http.Handler
}

// NewRawAction returns an action named name that serves every verb with h.
// The handler is skipped when a processor already answered the exchange.
func NewRawAction(name string, h http.Handler) *RawAction {
	return &RawAction{name: name, handler: h}
}

// Name implements Action.
func (a *RawAction) Name() string { return a.name }

// OnAction implements ActionHandler.
func (a *RawAction) OnAction(ex *Exchange) {
	if ex.Answered() {
		return
	}
	a.handler.ServeHTTP(ex, ex.Request())
}
