package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"strings"
)

// tokenHeader is the bearer scheme prefix accepted by RequireToken.
const tokenHeader = "Bearer "

// tokenFromRequest returns the caller's input token from the Authorization
// header, falling back to the ?token= query parameter (browsers cannot set
// headers on websocket upgrades).
func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, tokenHeader) {
		return strings.TrimSpace(auth[len(tokenHeader):])
	}
	return r.URL.Query().Get("token")
}

// tokenMatches compares digests so the check takes the same time for any
// wrong token length.
func tokenMatches(provided, expected string) bool {
	p := sha256.Sum256([]byte(provided))
	e := sha256.Sum256([]byte(expected))
	return hmac.Equal(p[:], e[:])
}

// Authorized reports whether r may send input. An empty token allows everyone.
func Authorized(r *http.Request, token string) bool {
	return token == "" || tokenMatches(tokenFromRequest(r), token)
}

// RequireToken creates middleware that rejects requests without the input
// token. An empty token disables the check.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authorized(r, token) {
				RecordConnectionRejected("unauthorized")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"error":   "unauthorized",
					"message": "Input token required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
