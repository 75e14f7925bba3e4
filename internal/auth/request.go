package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts the session token from the session cookie or an
// "Authorization: Bearer" header. With allowQuery the "token" query parameter
// is accepted too, browsers cannot set headers on a WebSocket upgrade.
func TokenFromRequest(r *http.Request, cookieName string, allowQuery bool) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}
