package auth

import (
	"net/http"
	"strings"
)

// CookieName is the session cookie used for each role.
func CookieName(role Role) string {
	switch role {
	case RoleAdmin:
		return "admin-token"
	case RoleAgent:
		return "agent-token"
	default:
		return "auth-token"
	}
}

// SetCookie stores token in the role's session cookie.
func (s *Sessions) SetCookie(w http.ResponseWriter, role Role, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(role),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter, role Role) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName(role),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// tokenFrom reads the role cookie, falling back to a bearer header for API
// clients.
func tokenFrom(r *http.Request, role Role) string {
	if c, err := r.Cookie(CookieName(role)); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
