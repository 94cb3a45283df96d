package controller

import (
	"net/http"

	"github.com/unclebandit/framestorm-backend/internal/dashboard"
	"github.com/unclebandit/framestorm-backend/internal/session"
)

type SessionController struct {
	Sessions  *session.Provider
	Dashboard *dashboard.Manager
}

// SignOut revokes the caller's token and drops their dashboard session,
// including any generated content.
func (c *SessionController) SignOut(w http.ResponseWriter, r *http.Request) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not signed in"})
		return
	}
	c.Sessions.SignOut(id)
	if c.Dashboard != nil {
		c.Dashboard.Close(id.OwnerID)
	}
	w.WriteHeader(http.StatusNoContent)
}
