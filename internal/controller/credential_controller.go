package controller

import (
	"net/http"

	"github.com/unclebandit/jobreach-backend/internal/credential"
	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
)

type CredentialController struct {
	Manager *credential.Manager
}

// Connect returns the provider authorization URL; the client navigates there
// and the provider redirects back to Callback.
func (c *CredentialController) Connect(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"authorize_url": c.Manager.InitiateConnect(owner),
	})
}

// Callback completes the redirect-based grant flow.
func (c *CredentialController) Callback(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	code := r.URL.Query().Get("code")
	if owner == "" || code == "" {
		writeError(w, appErrors.NewValidation("code"))
		return
	}
	if err := c.Manager.CompleteConnect(r.Context(), owner, code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}

// Status is a pure read of grant and session state.
func (c *CredentialController) Status(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	st, err := c.Manager.Status(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ConfirmSession re-derives the session marker after idle timeout, the
// explicit user step before the send capability is presented again.
func (c *CredentialController) ConfirmSession(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	st, err := c.Manager.ConfirmSession(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// DisconnectView drops only the client-session marker; the durable grant is
// untouched.
func (c *CredentialController) DisconnectView(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	if err := c.Manager.DisconnectView(r.Context(), owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh forces a token refresh. Mostly useful for diagnostics; dispatch
// refreshes on its own.
func (c *CredentialController) Refresh(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	if _, err := c.Manager.Refresh(r.Context(), owner); err != nil {
		writeError(w, err)
		return
	}
	st, err := c.Manager.Status(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
