package webhook

import (
	"crypto/subtle"
	"net/http"
)

// Credential is a username/password pair accepted by authenticated
// webhook routes.
type Credential struct {
	User     string
	Password string
}

// Authenticated wraps fn so it only runs for requests carrying HTTP
// Basic credentials that exactly match one of creds. Rejected
// requests are answered "401 Unauthorized".
//
// An empty or nil credential list authorises every request; deploy at
// least one pair to close the gate.
func Authenticated(fn Handler, creds []Credential) Handler {
	return func(w http.ResponseWriter, r *http.Request, chat Sender) ([]byte, error) {
		if !authorized(r, creds) {
			return nil, StatusError(http.StatusUnauthorized)
		}
		return fn(w, r, chat)
	}
}

// authorized reports whether the request carries a Basic pair that
// matches one of creds. No credentials configured means every request
// is authorised.
func authorized(r *http.Request, creds []Credential) bool {
	if len(creds) == 0 {
		return true
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}

	for _, c := range creds {
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(c.Password)) == 1
		if userMatch && passMatch {
			return true
		}
	}
	return false
}
