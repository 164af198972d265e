package httpapi

import (
	"net/http"

	"orderdesk.dev/internal/authz"
)

type userInfo struct {
	Org         string             `json:"org"`
	Role        authz.Role         `json:"role"`
	Permissions []authz.Permission `json:"permissions"`
}

// handleUsers lists the directory with each user's role-derived permissions.
// The listing itself is not authorized: it is the login picker for the demo
// frontend and carries nothing an order endpoint would protect.
func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	out := make(map[string]userInfo)
	for _, s := range a.users.Subjects() {
		out[s.ID] = userInfo{
			Org:         s.Org,
			Role:        s.Role,
			Permissions: authz.PermissionList(s.Role),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": out,
	})
}
