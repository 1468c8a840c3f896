package controller

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/service"
)

type DispatchController struct {
	DispatchService *service.DispatchService
}

func (c *DispatchController) Dispatch(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}

	var body struct {
		CVRef          string `json:"cv_ref"`
		CoverLetterRef string `json:"cover_letter_ref"`
		BodyTemplate   string `json:"body_template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body"))
		return
	}

	result, err := c.DispatchService.Dispatch(r.Context(), owner, model.AttachmentSet{
		CVRef:          body.CVRef,
		CoverLetterRef: body.CoverLetterRef,
	}, body.BodyTemplate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
