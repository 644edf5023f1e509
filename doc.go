// Package dispatch is the request-dispatch core of an embeddable HTTP
// service. Actions own (method, path) routes, processors run around every
// dispatched request, and the swagger action describes the registry as a
// Swagger 2.0 document without any separate schema authoring.
//
// Actions implement only the verbs they answer:
//
//	type users struct{}
//
//	func (users) Name() string { return "users" }
//
//	func (users) Routes() []dispatch.Path {
//	    return []dispatch.Path{
//	        dispatch.NewPath(dispatch.MethodGet, "/users/:id"),
//	    }
//	}
//
//	func (users) OnGet(ex *dispatch.Exchange) {
//	    ex.SetJSON(map[string]string{"id": ex.Param("id")})
//	}
//
// Registration happens at startup, then the documentation snapshot is taken:
//
//	srv := dispatch.New(dispatch.WithInfo(info))
//	srv.Add(users{})
//	srv.Use(dispatch.RequestID(), dispatch.AccessLog(slog.Default()))
//	srv.ServeSwagger()
//
// Processor pre-hooks run in registration order before the action, and
// post-hooks run in the same order after it. A processor that wants to stop
// a request answers the exchange; actions check Exchange.Answered.
package dispatch
