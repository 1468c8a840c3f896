package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to HTTP statuses. Raw transport errors
// never reach the client: anything unclassified becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *appErrors.ValidationError
		conflict   *appErrors.ConflictError
		invalid    *appErrors.InvalidStateError
		notFound   *appErrors.NotFoundError
		reauth     *appErrors.ReauthRequiredError
		grant      *appErrors.GrantInvalidError
		upstream   *appErrors.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errBody("validation_error", err.Error()))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errBody("conflict", err.Error()))
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusConflict, errBody("invalid_state", err.Error()))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errBody("not_found", err.Error()))
	case errors.As(err, &reauth):
		writeJSON(w, http.StatusUnauthorized, errBody("reauth_required", err.Error()))
	case errors.As(err, &grant):
		writeJSON(w, http.StatusUnauthorized, errBody("grant_invalid", err.Error()))
	case errors.As(err, &upstream):
		writeJSON(w, http.StatusBadGateway, errBody("upstream_error", "an external provider failed; try again"))
	default:
		log.Println("⚠️ unhandled error:", err)
		writeJSON(w, http.StatusInternalServerError, errBody("internal_error", "something went wrong"))
	}
}

func errBody(code, message string) map[string]string {
	return map[string]string{"error": code, "message": message}
}

// requestOwner resolves the owner correlation key. Authentication proper is
// out of scope; upstream glue sets the header.
func requestOwner(r *http.Request) string {
	if v := r.Header.Get("X-Owner-Email"); v != "" {
		return v
	}
	return r.URL.Query().Get("owner")
}
