package model

// CartItem is a snapshot of a lead queued for a send batch. The cart is
// advisory client-session state: it lives under an owner-qualified Redis key
// and is safe to lose without corrupting durable rows.
type CartItem struct {
	LeadID   int    `json:"lead_id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// AttachmentSet is the attachment selection for one dispatch batch: exactly
// one CV and one cover letter.
type AttachmentSet struct {
	CVRef          string `json:"cv_ref"`
	CoverLetterRef string `json:"cover_letter_ref"`
}
