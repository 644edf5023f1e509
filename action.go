package dispatch

// Action answers requests for the routes it owns. Its name is the registry
// key and must be unique and non-empty.
//
// An action implements only the verb hooks it supports (GetHandler,
// PostHandler, ...). Dispatching a verb whose hook is missing does nothing;
// that is not an error.
type Action interface {
	Name() string
}

// ActionHandler replaces the default verb routing performed by Invoke.
type ActionHandler interface {
	OnAction(ex *Exchange)
}

// Verb hooks.
type (
	GetHandler     interface{ OnGet(ex *Exchange) }
	PostHandler    interface{ OnPost(ex *Exchange) }
	PutHandler     interface{ OnPut(ex *Exchange) }
	PatchHandler   interface{ OnPatch(ex *Exchange) }
	HeadHandler    interface{ OnHead(ex *Exchange) }
	DeleteHandler  interface{ OnDelete(ex *Exchange) }
	OptionsHandler interface{ OnOptions(ex *Exchange) }
	TraceHandler   interface{ OnTrace(ex *Exchange) }
	ConnectHandler interface{ OnConnect(ex *Exchange) }
	UnknownHandler interface{ OnUnknown(ex *Exchange) }
)

// RouteProvider is implemented by actions that declare their own routes.
// Registry.Add registers each of them as visible.
type RouteProvider interface {
	Routes() []Path
}

// Documenter is implemented by actions that describe their routes for the
// generated documentation. It has no effect on dispatch.
type Documenter interface {
	Docs() Docs
}

// Docs is the per-route documentation of an action.
type Docs struct {
	Summaries    map[Path]string
	Descriptions map[Path]string
	Tags         map[Path][]string
	Inputs       map[Path][]Input
	Responses    map[Path]map[int]string
}

// Header is a response header name/value pair.
type Header struct {
	Name  string
	Value string
}

// HeaderProvider is implemented by actions with their own default response
// headers. Actions without it get the dispatcher's default headers.
type HeaderProvider interface {
	Headers() []Header
}

// Invoke runs a: OnAction when a implements ActionHandler, otherwise the
// hook matching the exchange's method.
func Invoke(a Action, ex *Exchange) {
	if h, ok := a.(ActionHandler); ok {
		h.OnAction(ex)
		return
	}

	//exhaustive:ignore
	switch ex.Method() {
	case MethodGet:
		if h, ok := a.(GetHandler); ok {
			h.OnGet(ex)
		}
	case MethodPost:
		if h, ok := a.(PostHandler); ok {
			h.OnPost(ex)
		}
	case MethodPut:
		if h, ok := a.(PutHandler); ok {
			h.OnPut(ex)
		}
	case MethodPatch:
		if h, ok := a.(PatchHandler); ok {
			h.OnPatch(ex)
		}
	case MethodHead:
		if h, ok := a.(HeadHandler); ok {
			h.OnHead(ex)
		}
	case MethodDelete:
		if h, ok := a.(DeleteHandler); ok {
			h.OnDelete(ex)
		}
	case MethodOptions:
		if h, ok := a.(OptionsHandler); ok {
			h.OnOptions(ex)
		}
	case MethodTrace:
		if h, ok := a.(TraceHandler); ok {
			h.OnTrace(ex)
		}
	case MethodConnect:
		if h, ok := a.(ConnectHandler); ok {
			h.OnConnect(ex)
		}
	default:
		if h, ok := a.(UnknownHandler); ok {
			h.OnUnknown(ex)
		}
	}
}

// ApplyHeaders sets each header on the response in order. Later entries
// replace earlier ones with the same name.
func ApplyHeaders(ex *Exchange, headers []Header) {
	for _, h := range headers {
		ex.SetHeader(h.Name, h.Value)
	}
}

// routesOf returns the routes an action declares, if any.
func routesOf(a Action) []Path {
	if rp, ok := a.(RouteProvider); ok {
		return rp.Routes()
	}
	return nil
}

// docsOf returns the documentation an action declares, if any.
func docsOf(a Action) Docs {
	if d, ok := a.(Documenter); ok {
		return d.Docs()
	}
	return Docs{}
}
