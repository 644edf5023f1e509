package dispatch

import "strings"

// Method is an HTTP verb as seen by the dispatcher.
type Method string

// Known methods. Anything else parses to MethodUnknown.
const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
	MethodUnknown Method = "UNKNOWN"
)

var methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodHead,
	MethodDelete,
	MethodOptions,
	MethodTrace,
	MethodConnect,
}

// Methods returns the routable methods in the order the documentation
// generator sweeps them.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// ParseMethod maps a request method to a Method, case-insensitively.
func ParseMethod(s string) Method {
	m := Method(strings.ToUpper(s))
	for _, known := range methods {
		if m == known {
			return m
		}
	}
	return MethodUnknown
}

// Lower returns the lowercase verb used as an operation key.
func (m Method) Lower() string { return strings.ToLower(string(m)) }

// hasBody reports whether documentation adds an implicit body parameter.
func (m Method) hasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}
