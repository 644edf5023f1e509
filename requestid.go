package dispatch

import "github.com/google/uuid"

// requestID is the context value type RequestID stores.
type requestID string

// RequestIDConfig configures the RequestID processor.
type RequestIDConfig struct {
	Header    string        // default: "X-Request-ID"
	Generator func() string // default: random UUID
}

// RequestID returns a processor that assigns each exchange an ID. An ID in
// the request header is kept; otherwise one is generated. The ID is echoed
// in the response header and available through GetRequestID.
func RequestID(cfg ...RequestIDConfig) Processor {
	c := RequestIDConfig{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}
	if len(cfg) > 0 {
		if cfg[0].Header != "" {
			c.Header = cfg[0].Header
		}
		if cfg[0].Generator != nil {
			c.Generator = cfg[0].Generator
		}
	}

	return NewProcessor("request_id", func(ex *Exchange) {
		id := ex.Request().Header.Get(c.Header)
		if id == "" {
			id = c.Generator()
		}
		SetValue(ex, requestID(id))
		ex.SetHeader(c.Header, id)
	}, nil)
}

// GetRequestID returns the ID RequestID assigned to the exchange.
func GetRequestID(ex *Exchange) string {
	id, _ := GetValue[requestID](ex.Context())
	return string(id)
}
