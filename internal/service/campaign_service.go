package service

import (
	"log"

	"github.com/unclebandit/jobreach-backend/internal/discovery"
	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	LeadRepo     repository.LeadRepositoryInterface
	Discovery    *discovery.Publisher
}

// CampaignDetails is a campaign plus the owner's lead counts by status.
type CampaignDetails struct {
	model.Campaign
	Stats map[string]int `json:"stats"`
}

// Create persists a pending campaign and forwards the search to the
// discovery provider. The provider call is fire-and-forget, but a broker
// rejection is synchronous: the campaign row is compensated away and the
// caller sees the failure immediately.
func (s *CampaignService) Create(owner string, criteria model.Criteria, cvRef, coverLetterRef string) (*model.Campaign, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	c := &model.Campaign{
		OwnerEmail:     owner,
		Criteria:       criteria,
		CVRef:          cvRef,
		CoverLetterRef: coverLetterRef,
		Status:         model.CampaignPending,
	}
	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	err := s.Discovery.PublishRequest(discovery.Request{
		CampaignID:     c.ID,
		OwnerEmail:     owner,
		Criteria:       criteria,
		CVRef:          cvRef,
		CoverLetterRef: coverLetterRef,
	})
	if err != nil {
		if delErr := s.CampaignRepo.Delete(c.ID, owner); delErr != nil {
			log.Println("⚠️ failed to roll back campaign", c.ID, "after publish failure:", delErr)
		}
		return nil, err
	}
	return c, nil
}

// Edit updates criteria and attachments in place. Completed and failed
// campaigns are immutable history; status is never reset by an edit.
func (s *CampaignService) Edit(id int, owner string, criteria model.Criteria, cvRef, coverLetterRef string) (*model.Campaign, error) {
	c, err := s.ownedCampaign(id, owner)
	if err != nil {
		return nil, err
	}
	if !c.Editable() {
		return nil, appErrors.NewInvalidState(c.ID, c.Status)
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	c.Criteria = criteria
	c.CVRef = cvRef
	c.CoverLetterRef = coverLetterRef
	if err := s.CampaignRepo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete is always permitted for the owner. Deleting an active campaign
// frees the one-active-campaign slot.
func (s *CampaignService) Delete(id int, owner string) error {
	return s.CampaignRepo.Delete(id, owner)
}

// MarkStatus applies the provider's completion callback. Only terminal
// statuses are accepted and only active campaigns move; a replayed callback
// for an already-terminal campaign is a no-op.
func (s *CampaignService) MarkStatus(id int, status string) error {
	if status != model.CampaignCompleted && status != model.CampaignFailed {
		return appErrors.NewValidation("status")
	}
	moved, err := s.CampaignRepo.MarkStatus(id, status)
	if err != nil {
		return err
	}
	if !moved {
		log.Println("ignoring completion callback for campaign", id, "not in an active state")
	}
	return nil
}

// List fetches the owner's campaigns with pagination.
func (s *CampaignService) List(owner string, page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListByOwner(owner, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return campaigns, pagination, nil
}

// GetDetails returns a campaign with the owner's lead stats.
func (s *CampaignService) GetDetails(id int, owner string) (*CampaignDetails, error) {
	c, err := s.ownedCampaign(id, owner)
	if err != nil {
		return nil, err
	}
	stats, err := s.LeadRepo.StatsByOwner(owner)
	if err != nil {
		return nil, err
	}
	stats["total"] = stats["new"] + stats["applied"]
	return &CampaignDetails{Campaign: *c, Stats: stats}, nil
}

func (s *CampaignService) ownedCampaign(id int, owner string) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c.OwnerEmail != owner {
		return nil, appErrors.NewNotFound("campaign", id)
	}
	return c, nil
}
