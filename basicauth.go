package dispatch

import (
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthConfig configures the BasicAuth processor.
type BasicAuthConfig struct {
	// Users maps user names to bcrypt password hashes.
	Users map[string][]byte
	Realm string // default: "restricted"
	Skip  func(ex *Exchange) bool
}

type basicUser string

// HashPassword returns the bcrypt hash of password for BasicAuthConfig.Users.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// BasicAuth returns a processor that checks HTTP basic credentials against
// bcrypt hashes. The authenticated name is available through BasicUser.
func BasicAuth(cfg BasicAuthConfig) Processor {
	realm := cfg.Realm
	if realm == "" {
		realm = "restricted"
	}
	challenge := "Basic realm=" + strconv.Quote(realm)

	return NewProcessor("basic_auth", func(ex *Exchange) {
		if ex.Answered() || (cfg.Skip != nil && cfg.Skip(ex)) {
			return
		}

		name, password, ok := ex.Request().BasicAuth()
		hash, known := cfg.Users[name]
		if !ok || !known || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
			ex.SetHeader("WWW-Authenticate", challenge)
			ex.SetError(http.StatusUnauthorized, &ProblemDetail{
				Type:   "about:blank",
				Title:  http.StatusText(http.StatusUnauthorized),
				Status: http.StatusUnauthorized,
			})
			return
		}
		SetValue(ex, basicUser(name))
	}, nil)
}

// BasicUser returns the user BasicAuth accepted for the exchange.
func BasicUser(ex *Exchange) (string, bool) {
	name, ok := GetValue[basicUser](ex.Context())
	return string(name), ok
}
