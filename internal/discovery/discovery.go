package discovery

import (
	"encoding/json"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/queue"
)

// Queue topics shared with the discovery provider.
const (
	RequestsTopic = "discovery_requests"
	ResultsTopic  = "discovery_results"
)

// Request is the outbound fire-and-forget message asking the provider to run
// one search. The owner email is the correlation key results come back under.
type Request struct {
	CampaignID     int            `json:"campaign_id"`
	OwnerEmail     string         `json:"owner_email"`
	Criteria       model.Criteria `json:"criteria"`
	CVRef          string         `json:"cv_ref,omitempty"`
	CoverLetterRef string         `json:"cover_letter_ref,omitempty"`
}

// Result message types delivered asynchronously by the provider.
const (
	MsgLeadInsert        = "lead_insert"
	MsgLeadUpdate        = "lead_update"
	MsgLeadDelete        = "lead_delete"
	MsgCampaignCompleted = "campaign_completed"
	MsgCampaignFailed    = "campaign_failed"
)

// Result is one asynchronous message from the provider: either a lead row
// change or a campaign completion callback.
type Result struct {
	Type       string      `json:"type"`
	CampaignID int         `json:"campaign_id,omitempty"`
	LeadID     int         `json:"lead_id,omitempty"`
	Lead       *model.Lead `json:"lead,omitempty"`
}

// Publisher sends discovery requests over the queue.
type Publisher struct {
	Queue queue.Queue
}

// PublishRequest validates the criteria union and hands the request to the
// broker. A broker error is surfaced synchronously as UpstreamError so the
// caller can refuse to create the campaign.
func (p *Publisher) PublishRequest(req Request) error {
	if err := req.Criteria.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if err := p.Queue.Publish(RequestsTopic, body); err != nil {
		return appErrors.NewUpstream("discovery request", err)
	}
	return nil
}
