package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}

	var body struct {
		Criteria       model.Criteria `json:"criteria"`
		CVRef          string         `json:"cv_ref"`
		CoverLetterRef string         `json:"cover_letter_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body"))
		return
	}

	campaign, err := c.CampaignService.Create(owner, body.Criteria, body.CVRef, body.CoverLetterRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.List(owner, page, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id"))
		return
	}

	details, err := c.CampaignService.GetDetails(id, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id"))
		return
	}

	var body struct {
		Criteria       model.Criteria `json:"criteria"`
		CVRef          string         `json:"cv_ref"`
		CoverLetterRef string         `json:"cover_letter_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, appErrors.NewValidation("body"))
		return
	}

	campaign, err := c.CampaignService.Edit(id, owner, body.Criteria, body.CVRef, body.CoverLetterRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, appErrors.NewValidation("id"))
		return
	}

	if err := c.CampaignService.Delete(id, owner); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
