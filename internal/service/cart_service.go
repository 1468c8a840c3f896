package service

import (
	"context"

	"github.com/unclebandit/jobreach-backend/internal/cache"
	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/repository"
)

// CartService maintains the owner's ordered, id-unique lead selection on top
// of the session store's single-blob cart.
type CartService struct {
	Store cache.Store
	Leads repository.LeadRepositoryInterface
}

// Add snapshots the lead into the cart. Adding an id already present is a
// no-op that returns the unchanged cart.
func (s *CartService) Add(ctx context.Context, owner string, leadID int) ([]model.CartItem, error) {
	lead, err := s.Leads.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead.OwnerEmail != owner {
		return nil, appErrors.NewNotFound("lead", leadID)
	}

	items, err := s.Store.CartGet(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.LeadID == leadID {
			return items, nil
		}
	}
	items = append(items, model.CartItem{
		LeadID:   lead.ID,
		Title:    lead.Title,
		Company:  lead.Company,
		Platform: lead.Platform,
		URL:      lead.URL,
	})
	if err := s.Store.CartPut(ctx, owner, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove drops a single lead from the cart; an unknown id is a no-op.
func (s *CartService) Remove(ctx context.Context, owner string, leadID int) ([]model.CartItem, error) {
	items, err := s.Store.CartGet(ctx, owner)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.LeadID != leadID {
			kept = append(kept, it)
		}
	}
	if err := s.Store.CartPut(ctx, owner, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *CartService) List(ctx context.Context, owner string) ([]model.CartItem, error) {
	return s.Store.CartGet(ctx, owner)
}

func (s *CartService) Clear(ctx context.Context, owner string) error {
	return s.Store.CartClear(ctx, owner)
}
