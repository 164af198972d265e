package httpapi

import (
	"net/http"
	"strings"
	"time"

	"orderdesk.dev/internal/auth"
	"orderdesk.dev/internal/authz"
)

const (
	headerUserID   = "X-User-Id"
	headerUserOrg  = "X-User-Org"
	headerUserRole = "X-User-Role"
)

// withSubject attaches the caller identity to the request context. When a
// bearer token is presented and token auth is configured, the token wins;
// otherwise the identity headers are trusted as-is. Requests with neither
// proceed anonymously and are denied by the evaluator downstream.
func (a *API) withSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearer := bearerToken(r); bearer != "" && auth.Enabled() {
			subject, err := auth.ParseAndValidate(bearer)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.ContextWithSubject(r.Context(), subject)))
			return
		}

		subject := authz.Subject{
			ID:   r.Header.Get(headerUserID),
			Org:  r.Header.Get(headerUserOrg),
			Role: authz.Role(r.Header.Get(headerUserRole)),
		}
		if subject.ID == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithSubject(r.Context(), subject)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

type tokenRequest struct {
	User string `json:"user"`
}

// handleAuthToken issues a short-lived JWT for a directory user. Only
// available when ORDERDESK_AUTH_SECRET is configured.
func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	if !auth.Enabled() {
		writeError(w, r, http.StatusNotFound, "token auth is not configured")
		return
	}
	var req tokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	subject, ok := a.users.Lookup(req.User)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown user")
		return
	}
	const ttl = time.Hour
	token, err := auth.GenerateToken(subject, ttl)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
	})
}
