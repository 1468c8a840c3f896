package model

import (
	"encoding/json"
	"time"
)

// Lead statuses. A lead moves new -> applied only as a side effect of a
// successful dispatch.
const (
	LeadNew     = "new"
	LeadApplied = "applied"
)

type Lead struct {
	ID         int             `db:"id" json:"id"`
	OwnerEmail string          `db:"owner_email" json:"owner_email"`
	Title      string          `db:"title" json:"title"`
	Company    string          `db:"company" json:"company"`
	Platform   string          `db:"platform" json:"platform"`
	URL        string          `db:"url" json:"url"`
	Status     string          `db:"status" json:"status"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}
