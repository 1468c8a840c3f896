package model

import "time"

// Campaign statuses. pending and processing count as "active": an owner may
// hold at most one active campaign at a time.
const (
	CampaignPending    = "pending"
	CampaignProcessing = "processing"
	CampaignCompleted  = "completed"
	CampaignFailed     = "failed"
)

type Campaign struct {
	ID             int        `db:"id" json:"id"`
	OwnerEmail     string     `db:"owner_email" json:"owner_email"`
	Criteria       Criteria   `db:"criteria" json:"criteria"`
	CVRef          string     `db:"cv_ref" json:"cv_ref,omitempty"`
	CoverLetterRef string     `db:"cover_letter_ref" json:"cover_letter_ref,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Active reports whether the campaign still occupies the owner's single
// active-campaign slot.
func (c *Campaign) Active() bool {
	return c.Status == CampaignPending || c.Status == CampaignProcessing
}

// Editable campaigns are the active ones; completed/failed campaigns are
// immutable history.
func (c *Campaign) Editable() bool {
	return c.Active()
}
