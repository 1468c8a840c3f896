package appErrors

import "fmt"

// ValidationError reports missing or malformed required input. Surfaced
// immediately, never retried.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: missing or invalid %s", e.Field)
}

func NewValidation(field string) error {
	return &ValidationError{Field: field}
}

// ConflictError reports a violation of the one-active-campaign-per-owner
// rule. The caller must wait for or delete the active campaign.
type ConflictError struct {
	Owner string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("owner %s already has an active campaign", e.Owner)
}

func NewConflict(owner string) error {
	return &ConflictError{Owner: owner}
}

// InvalidStateError reports an operation against a campaign whose status
// forbids it (completed/failed campaigns are immutable history).
type InvalidStateError struct {
	CampaignID int
	Status     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("campaign %d is %s and cannot be modified", e.CampaignID, e.Status)
}

func NewInvalidState(id int, status string) error {
	return &InvalidStateError{CampaignID: id, Status: status}
}

// GrantInvalidError means the provider rejected the refresh token itself.
// Terminal: the owner must reconnect through the authorization redirect.
type GrantInvalidError struct {
	Owner string
}

func (e *GrantInvalidError) Error() string {
	return fmt.Sprintf("refresh token for %s rejected by provider", e.Owner)
}

func NewGrantInvalid(owner string) error {
	return &GrantInvalidError{Owner: owner}
}

// ReauthRequiredError is surfaced when a dispatch could not obtain a usable
// token; the durable connected state has been revoked and the owner must
// re-run the authorization flow.
type ReauthRequiredError struct {
	Owner string
}

func (e *ReauthRequiredError) Error() string {
	return fmt.Sprintf("owner %s must re-authorize the mail provider", e.Owner)
}

func NewReauthRequired(owner string) error {
	return &ReauthRequiredError{Owner: owner}
}

// UpstreamError wraps a discovery or dispatch provider failure. Retry is left
// to the user; the wrapped transport error is never shown raw.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func NewUpstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// NotFoundError is a sentinel for missing rows.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}
