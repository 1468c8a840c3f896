package main

import (
	"encoding/json"
	"testing"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/service"
)

type stubLeadRepo struct {
	leads map[int]*model.Lead
}

func (r *stubLeadRepo) Upsert(l *model.Lead) (bool, error) {
	_, existed := r.leads[l.ID]
	r.leads[l.ID] = l
	return !existed, nil
}

func (r *stubLeadRepo) GetByID(id int) (*model.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, appErrors.NewNotFound("lead", id)
	}
	return l, nil
}

func (r *stubLeadRepo) ListByOwner(owner string) ([]model.Lead, error) { return nil, nil }
func (r *stubLeadRepo) ListByIDs(ids []int) ([]model.Lead, error)     { return nil, nil }
func (r *stubLeadRepo) MarkApplied(ids []int) error                   { return nil }

func (r *stubLeadRepo) Delete(id int) error {
	delete(r.leads, id)
	return nil
}

func (r *stubLeadRepo) StatsByOwner(owner string) (map[string]int, error) { return nil, nil }

type stubCampaignRepo struct {
	statuses map[int]string
}

func (r *stubCampaignRepo) Create(c *model.Campaign) error            { return nil }
func (r *stubCampaignRepo) GetByID(id int) (*model.Campaign, error)   { return nil, nil }
func (r *stubCampaignRepo) Update(c *model.Campaign) error            { return nil }
func (r *stubCampaignRepo) Delete(id int, owner string) error         { return nil }
func (r *stubCampaignRepo) ListByOwner(owner string, offset, limit int, status string) ([]*model.Campaign, int, error) {
	return nil, 0, nil
}

func (r *stubCampaignRepo) MarkStatus(id int, status string) (bool, error) {
	current, ok := r.statuses[id]
	if !ok || (current != model.CampaignPending && current != model.CampaignProcessing) {
		return false, nil
	}
	r.statuses[id] = status
	return true, nil
}

func workerFixture() (*stubLeadRepo, *stubCampaignRepo, *service.CampaignService) {
	leads := &stubLeadRepo{leads: make(map[int]*model.Lead)}
	campaigns := &stubCampaignRepo{statuses: map[int]string{1: model.CampaignProcessing}}
	svc := &service.CampaignService{CampaignRepo: campaigns, LeadRepo: leads}
	return leads, campaigns, svc
}

func TestHandleResultLeadInsert(t *testing.T) {
	leads, _, svc := workerFixture()

	body, _ := json.Marshal(map[string]any{
		"type": "lead_insert",
		"lead": map[string]any{
			"id":          7,
			"owner_email": "alice@example.com",
			"title":       "Backend Engineer",
			"company":     "Acme",
			"platform":    "linkedin",
			"url":         "https://linkedin.com/jobs/7",
		},
	})
	if err := handleResult(body, leads, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leads.leads[7] == nil {
		t.Fatal("lead not stored")
	}
}

func TestHandleResultLeadDelete(t *testing.T) {
	leads, _, svc := workerFixture()
	leads.leads[7] = &model.Lead{ID: 7, OwnerEmail: "alice@example.com"}

	body, _ := json.Marshal(map[string]any{"type": "lead_delete", "lead_id": 7})
	if err := handleResult(body, leads, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leads.leads[7] != nil {
		t.Fatal("lead not deleted")
	}
}

func TestHandleResultCampaignCompleted(t *testing.T) {
	leads, campaigns, svc := workerFixture()

	body, _ := json.Marshal(map[string]any{"type": "campaign_completed", "campaign_id": 1})
	if err := handleResult(body, leads, svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if campaigns.statuses[1] != model.CampaignCompleted {
		t.Errorf("status = %q", campaigns.statuses[1])
	}

	// Replayed callback against the now-terminal campaign is a no-op.
	if err := handleResult(body, leads, svc); err != nil {
		t.Fatalf("replay must not error: %v", err)
	}
	if campaigns.statuses[1] != model.CampaignCompleted {
		t.Errorf("replay moved status to %q", campaigns.statuses[1])
	}
}

func TestHandleResultMalformedIsDropped(t *testing.T) {
	leads, _, svc := workerFixture()

	// Malformed JSON must be acked away, not requeued forever.
	if err := handleResult([]byte("{not json"), leads, svc); err != nil {
		t.Errorf("expected nil for malformed payload, got %v", err)
	}
	if err := handleResult([]byte(`{"type":"surprise"}`), leads, svc); err != nil {
		t.Errorf("expected nil for unknown type, got %v", err)
	}
	if err := handleResult([]byte(`{"type":"lead_insert"}`), leads, svc); err != nil {
		t.Errorf("expected nil for lead message without payload, got %v", err)
	}
}
