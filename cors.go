package dispatch

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS processor. An AllowOrigins entry of "*"
// admits any origin.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []Method
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// CORS returns a processor for Cross-Origin Resource Sharing. Requests
// without an Origin header, or from an origin not on the list, pass through
// untouched. A preflight (OPTIONS carrying Access-Control-Request-Method)
// is answered with 204; it only reaches the processor when an OPTIONS route
// exists for the template. Without a config, any origin and every verb but
// TRACE and CONNECT are allowed.
func CORS(cfg ...CORSConfig) Processor {
	c := CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodHead, MethodDelete, MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	anyOrigin := slices.Contains(c.AllowOrigins, "*")
	verbs := make([]string, len(c.AllowMethods))
	for i, m := range c.AllowMethods {
		verbs[i] = string(m)
	}
	methods := strings.Join(verbs, ", ")
	headers := strings.Join(c.AllowHeaders, ", ")
	expose := strings.Join(c.ExposeHeaders, ", ")

	return NewProcessor("cors", func(ex *Exchange) {
		origin := ex.Request().Header.Get("Origin")
		if origin == "" {
			return
		}

		switch {
		case anyOrigin && !c.AllowCredentials:
			ex.SetHeader("Access-Control-Allow-Origin", "*")
		case anyOrigin || slices.Contains(c.AllowOrigins, origin):
			// Credentialed responses may not use the wildcard.
			ex.SetHeader("Access-Control-Allow-Origin", origin)
			ex.Header().Add("Vary", "Origin")
		default:
			return
		}

		if c.AllowCredentials {
			ex.SetHeader("Access-Control-Allow-Credentials", "true")
		}
		if expose != "" {
			ex.SetHeader("Access-Control-Expose-Headers", expose)
		}

		if ex.Method() != MethodOptions || ex.Request().Header.Get("Access-Control-Request-Method") == "" {
			return
		}
		ex.SetHeader("Access-Control-Allow-Methods", methods)
		if headers != "" {
			ex.SetHeader("Access-Control-Allow-Headers", headers)
		}
		if c.MaxAge > 0 {
			ex.SetHeader("Access-Control-Max-Age", strconv.Itoa(c.MaxAge))
		}
		ex.SetStatus(http.StatusNoContent)
		ex.Answer()
	}, nil)
}
