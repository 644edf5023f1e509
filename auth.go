package dispatch

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var errSigningMethod = errors.New("unexpected signing method")

// BearerAuthConfig configures the BearerAuth processor.
type BearerAuthConfig struct {
	// Key is the HMAC secret tokens are signed with (HS256).
	Key []byte
	// Skip exempts exchanges from authentication, e.g. the swagger route.
	Skip func(ex *Exchange) bool
}

// BearerAuth returns a processor that requires an HS256 JWT in the
// Authorization header. Valid claims are available through Claims; a missing
// or invalid token answers the exchange with 401.
func BearerAuth(cfg BearerAuthConfig) Processor {
	keyFunc := func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errSigningMethod
		}
		return cfg.Key, nil
	}

	return NewProcessor("bearer_auth", func(ex *Exchange) {
		if ex.Answered() || (cfg.Skip != nil && cfg.Skip(ex)) {
			return
		}

		token, ok := strings.CutPrefix(ex.Request().Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			unauthorized(ex, "missing bearer token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		t, err := jwt.ParseWithClaims(token, claims, keyFunc)
		if err != nil || !t.Valid {
			unauthorized(ex, "invalid bearer token")
			return
		}
		SetValue(ex, claims)
	}, nil)
}

// Claims returns the token claims BearerAuth accepted for the exchange.
func Claims(ex *Exchange) (*jwt.RegisteredClaims, bool) {
	return GetValue[*jwt.RegisteredClaims](ex.Context())
}

func unauthorized(ex *Exchange, detail string) {
	ex.SetHeader("WWW-Authenticate", `Bearer realm="api"`)
	ex.SetError(http.StatusUnauthorized, &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(http.StatusUnauthorized),
		Status: http.StatusUnauthorized,
		Detail: detail,
	})
}
