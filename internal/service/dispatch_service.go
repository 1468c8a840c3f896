package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/unclebandit/jobreach-backend/internal/cache"
	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/mailer"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/repository"
)

// Default application templates used when the caller supplies none.
const (
	defaultSubjectTemplate = "Application: {title} at {company}"
	defaultBodyTemplate    = "Hello,\n\nI would like to apply for the {title} position at {company} " +
		"(found via {platform}).\nMy CV and cover letter are attached.\n\nBest regards"
)

// TokenResolver is the dispatch-time slice of the credential manager.
type TokenResolver interface {
	ResolveToken(ctx context.Context, owner string) (string, error)
}

// Sender is the dispatch-time slice of the mail provider client.
type Sender interface {
	SendBatch(ctx context.Context, accessToken string, batch mailer.Batch) (*mailer.BatchResult, error)
}

// LeadResult is the per-lead outcome reported back to the user.
type LeadResult struct {
	LeadID  int    `json:"lead_id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

// DispatchResult summarizes one batch.
type DispatchResult struct {
	BatchID string       `json:"batch_id"`
	Outcome string       `json:"outcome"`
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Results []LeadResult `json:"results"`
}

// DispatchService sends one application per cart lead as a single batch call
// and reconciles the outcome against leads and cart.
type DispatchService struct {
	Carts       cache.Store
	Leads       repository.LeadRepositoryInterface
	Credentials TokenResolver
	Mailer      Sender
}

// Dispatch runs the full batch. The cart is cleared only on explicit,
// unambiguous success signals; any transport error or unknown outcome leaves
// leads and cart exactly as they were so the user can retry.
func (s *DispatchService) Dispatch(ctx context.Context, owner string, attachments model.AttachmentSet, bodyTemplate string) (*DispatchResult, error) {
	// Preconditions, checked before any network call.
	items, err := s.Carts.CartGet(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, appErrors.NewValidation("cart")
	}
	if attachments.CVRef == "" {
		return nil, appErrors.NewValidation("cv_ref")
	}
	if attachments.CoverLetterRef == "" {
		return nil, appErrors.NewValidation("cover_letter_ref")
	}

	// Cart entries whose lead vanished from the store are dropped silently
	// rather than failing the whole batch.
	items, err = s.pruneStale(ctx, owner, items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, appErrors.NewValidation("cart")
	}

	// Grant existence, expiry and the single refresh are handled here; a
	// rejected refresh comes back as ReauthRequiredError.
	token, err := s.Credentials.ResolveToken(ctx, owner)
	if err != nil {
		return nil, err
	}

	if bodyTemplate == "" {
		bodyTemplate = defaultBodyTemplate
	}
	batch := mailer.Batch{
		BatchID:        uuid.New().String(),
		CVRef:          attachments.CVRef,
		CoverLetterRef: attachments.CoverLetterRef,
	}
	for _, it := range items {
		data := map[string]string{
			"title":    it.Title,
			"company":  it.Company,
			"platform": it.Platform,
			"url":      it.URL,
			"lead_id":  strconv.Itoa(it.LeadID),
		}
		batch.Items = append(batch.Items, mailer.Item{
			LeadID:  it.LeadID,
			Subject: RenderTemplate(defaultSubjectTemplate, data),
			Body:    RenderTemplate(bodyTemplate, data),
		})
	}

	result, err := s.Mailer.SendBatch(ctx, token, batch)
	if err != nil {
		// Timeout, 5xx, rejection: ambiguous or failed. Nothing is mutated.
		return nil, appErrors.NewUpstream("batch send", err)
	}

	switch result.Outcome {
	case mailer.OutcomeSuccess:
		return s.applyFullSuccess(ctx, owner, batch.BatchID, items)
	case mailer.OutcomePartial:
		return s.applyPartial(ctx, owner, batch.BatchID, items, result.Items)
	case mailer.OutcomeFailed:
		return nil, appErrors.NewUpstream("batch send", fmt.Errorf("provider reported whole-batch failure"))
	default:
		return nil, appErrors.NewUpstream("batch send", fmt.Errorf("provider reported unknown outcome %q", result.Outcome))
	}
}

func (s *DispatchService) pruneStale(ctx context.Context, owner string, items []model.CartItem) ([]model.CartItem, error) {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.LeadID
	}
	leads, err := s.Leads.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	present := make(map[int]bool, len(leads))
	for _, l := range leads {
		if l.OwnerEmail == owner {
			present[l.ID] = true
		}
	}

	kept := items[:0]
	for _, it := range items {
		if present[it.LeadID] {
			kept = append(kept, it)
		}
	}
	if len(kept) != len(ids) {
		if err := s.Carts.CartPut(ctx, owner, kept); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

func (s *DispatchService) applyFullSuccess(ctx context.Context, owner, batchID string, items []model.CartItem) (*DispatchResult, error) {
	ids := make([]int, len(items))
	results := make([]LeadResult, len(items))
	for i, it := range items {
		ids[i] = it.LeadID
		results[i] = LeadResult{LeadID: it.LeadID, Title: it.Title, Company: it.Company, Sent: true}
	}
	if err := s.Leads.MarkApplied(ids); err != nil {
		return nil, err
	}
	if err := s.Carts.CartClear(ctx, owner); err != nil {
		return nil, err
	}
	return &DispatchResult{
		BatchID: batchID,
		Outcome: mailer.OutcomeSuccess,
		Sent:    len(items),
		Results: results,
	}, nil
}

// applyPartial marks only the leads the provider confirmed sent; failed
// leads stay in the cart for a retry.
func (s *DispatchService) applyPartial(ctx context.Context, owner, batchID string, items []model.CartItem, outcomes []mailer.ItemResult) (*DispatchResult, error) {
	sent := make(map[int]bool, len(outcomes))
	errs := make(map[int]string, len(outcomes))
	for _, o := range outcomes {
		sent[o.LeadID] = o.Sent
		errs[o.LeadID] = o.Error
	}

	var sentIDs []int
	var remaining []model.CartItem
	results := make([]LeadResult, 0, len(items))
	for _, it := range items {
		r := LeadResult{LeadID: it.LeadID, Title: it.Title, Company: it.Company, Sent: sent[it.LeadID]}
		if r.Sent {
			sentIDs = append(sentIDs, it.LeadID)
		} else {
			r.Error = errs[it.LeadID]
			if r.Error == "" {
				r.Error = "not sent"
			}
			remaining = append(remaining, it)
		}
		results = append(results, r)
	}

	if err := s.Leads.MarkApplied(sentIDs); err != nil {
		return nil, err
	}
	if err := s.Carts.CartPut(ctx, owner, remaining); err != nil {
		return nil, err
	}
	return &DispatchResult{
		BatchID: batchID,
		Outcome: mailer.OutcomePartial,
		Sent:    len(sentIDs),
		Failed:  len(remaining),
		Results: results,
	}, nil
}
