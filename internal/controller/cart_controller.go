package controller

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/jobreach-backend/internal/credential"
	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/service"
)

type CartController struct {
	CartService *service.CartService
	Credentials *credential.Manager
}

func (c *CartController) ListCart(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	items, err := c.CartService.List(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	var body struct {
		LeadID int `json:"lead_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body"))
		return
	}

	items, err := c.CartService.Add(r.Context(), owner, body.LeadID)
	if err != nil {
		writeError(w, err)
		return
	}
	c.touch(r, owner)
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	leadID, err := strconv.Atoi(chi.URLParam(r, "leadID"))
	if err != nil {
		writeError(w, appErrors.NewValidation("lead_id"))
		return
	}
	items, err := c.CartService.Remove(r.Context(), owner, leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	c.touch(r, owner)
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	if err := c.CartService.Clear(r.Context(), owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// touch counts cart curation as qualifying activity for the credential
// session; it extends active sessions only.
func (c *CartController) touch(r *http.Request, owner string) {
	if err := c.Credentials.TouchActivity(r.Context(), owner); err != nil {
		log.Println("⚠️ failed to touch session activity:", err)
	}
}
