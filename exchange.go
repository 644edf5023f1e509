package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// Exchange is one request/response pair. The response is buffered until the
// transport flushes it with Send, so processors can still change headers
// and status after the action returns.
//
// Exchange implements http.ResponseWriter, which lets plain net/http
// handlers run as actions (see RawAction).
type Exchange struct {
	req      *http.Request
	template string
	params   map[string]string

	header   http.Header
	status   int
	body     bytes.Buffer
	answered bool
}

// NewExchange wraps r. The transport binds the matched template with Bind.
func NewExchange(r *http.Request) *Exchange {
	return &Exchange{
		req:    r,
		header: make(http.Header),
	}
}

// Request returns the underlying request.
func (e *Exchange) Request() *http.Request { return e.req }

// Context returns the request context.
func (e *Exchange) Context() context.Context { return e.req.Context() }

// Method returns the parsed request method.
func (e *Exchange) Method() Method { return ParseMethod(e.req.Method) }

// Path returns the raw request path.
func (e *Exchange) Path() string { return e.req.URL.Path }

// Bind records the route template the transport matched and the values of
// its ":name" placeholders.
func (e *Exchange) Bind(template string, params map[string]string) {
	e.template = template
	e.params = params
}

// Template returns the bound route template, or the raw path when nothing
// was bound.
func (e *Exchange) Template() string {
	if e.template == "" {
		return e.Path()
	}
	return e.template
}

// Param returns a bound path parameter.
func (e *Exchange) Param(name string) string { return e.params[name] }

// Query returns the first query value for name.
func (e *Exchange) Query(name string) string { return e.req.URL.Query().Get(name) }

// Header returns the response header map.
func (e *Exchange) Header() http.Header { return e.header }

// SetHeader sets a response header, replacing any existing value.
func (e *Exchange) SetHeader(name, value string) { e.header.Set(name, value) }

// Status returns the response status, defaulting to 200.
func (e *Exchange) Status() int {
	if e.status == 0 {
		return http.StatusOK
	}
	return e.status
}

// SetStatus sets the response status.
func (e *Exchange) SetStatus(code int) { e.status = code }

// WriteHeader implements http.ResponseWriter.
func (e *Exchange) WriteHeader(code int) {
	e.status = code
	e.answered = true
}

// Write implements http.ResponseWriter by appending to the buffered body.
func (e *Exchange) Write(b []byte) (int, error) {
	e.answered = true
	return e.body.Write(b)
}

// SetBody replaces the response body and marks the exchange answered.
func (e *Exchange) SetBody(contentType string, b []byte) {
	e.body.Reset()
	e.body.Write(b)
	if contentType != "" {
		e.header.Set("Content-Type", contentType)
	}
	e.answered = true
}

// SetJSON encodes v as the response body.
func (e *Exchange) SetJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.SetBody("application/json", b)
	return nil
}

// SetError answers the exchange with status and a JSON payload.
func (e *Exchange) SetError(status int, payload any) {
	e.status = status
	if err := e.SetJSON(payload); err != nil {
		e.SetBody("text/plain; charset=utf-8", []byte(http.StatusText(status)))
	}
}

// Body returns the buffered response body.
func (e *Exchange) Body() []byte { return e.body.Bytes() }

// Answered reports whether something already produced a response. Processors
// answer an exchange to ask downstream actions to leave it alone.
func (e *Exchange) Answered() bool { return e.answered }

// Answer marks the exchange as answered without touching the body.
func (e *Exchange) Answer() { e.answered = true }

// Send flushes the buffered response to w.
func (e *Exchange) Send(w http.ResponseWriter) error {
	dst := w.Header()
	for k, vs := range e.header {
		dst[k] = vs
	}
	if e.body.Len() > 0 && dst.Get("Content-Length") == "" {
		dst.Set("Content-Length", strconv.Itoa(e.body.Len()))
	}
	w.WriteHeader(e.Status())
	if e.req.Method == http.MethodHead {
		return nil
	}
	_, err := w.Write(e.body.Bytes())
	return err
}

type contextKey[T any] struct{}

// SetValue stores a typed value on the exchange's request context. For use
// in processors.
func SetValue[T any](e *Exchange, val T) {
	ctx := context.WithValue(e.req.Context(), contextKey[T]{}, val)
	e.req = e.req.WithContext(ctx)
}

// GetValue retrieves a typed value stored with SetValue.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}
