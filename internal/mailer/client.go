package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Sentinel errors for mail provider failures.
var (
	ErrGrantInvalid = errors.New("mail provider rejected the refresh token")
	ErrUnreachable  = errors.New("mail provider unreachable")
	ErrSendRejected = errors.New("mail provider rejected the batch")
)

// Batch outcomes as reported by the provider.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomePartial = "partial"
)

// Token is a fresh access token from the token endpoint.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// GrantData is the full grant returned by the authorization-code exchange.
type GrantData struct {
	AccountAddress string
	AccessToken    string
	RefreshToken   string
	ExpiresAt      time.Time
}

// Item is one application in a batch.
type Item struct {
	LeadID  int    `json:"lead_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Batch is the single send call covering every selected lead.
type Batch struct {
	BatchID        string `json:"batch_id"`
	Items          []Item `json:"items"`
	CVRef          string `json:"cv_ref"`
	CoverLetterRef string `json:"cover_letter_ref"`
}

type ItemResult struct {
	LeadID int    `json:"lead_id"`
	Sent   bool   `json:"sent"`
	Error  string `json:"error,omitempty"`
}

// BatchResult is the provider's per-batch outcome. Items is only populated
// for partial outcomes.
type BatchResult struct {
	BatchID string       `json:"batch_id"`
	Outcome string       `json:"outcome"`
	Items   []ItemResult `json:"items,omitempty"`
}

// Client is the interface to the mail-dispatch provider.
type Client interface {
	AuthorizeURL(owner string) string
	Exchange(ctx context.Context, code string) (*GrantData, error)
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	SendBatch(ctx context.Context, accessToken string, batch Batch) (*BatchResult, error)
}

// HTTPClient implements Client against the provider's HTTP API.
type HTTPClient struct {
	baseURL     string
	clientID    string
	redirectURL string
	client      *http.Client
}

func NewHTTPClient(baseURL, clientID, redirectURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		clientID:    clientID,
		redirectURL: redirectURL,
		client:      &http.Client{Timeout: timeout},
	}
}

// AuthorizeURL builds the redirect the client navigates to; completion is
// observed later through the callback and status reads.
func (c *HTTPClient) AuthorizeURL(owner string) string {
	params := url.Values{
		"client_id":     {c.clientID},
		"redirect_uri":  {c.redirectURL},
		"response_type": {"code"},
		"scope":         {"mail.send"},
		"login_hint":    {owner},
	}
	return fmt.Sprintf("%s/oauth/authorize?%s", c.baseURL, params.Encode())
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Account      string `json:"account"`
}

func (c *HTTPClient) Exchange(ctx context.Context, code string) (*GrantData, error) {
	tr, err := c.postToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"client_id":    {c.clientID},
		"redirect_uri": {c.redirectURL},
	})
	if err != nil {
		return nil, err
	}
	return &GrantData{
		AccountAddress: tr.Account,
		AccessToken:    tr.AccessToken,
		RefreshToken:   tr.RefreshToken,
		ExpiresAt:      time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	tr, err := c.postToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
	})
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: tr.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

func (c *HTTPClient) postToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	u := c.baseURL + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	// 400/401 from the token endpoint means the grant itself is bad, which is
	// terminal; anything else 4xx/5xx is a provider fault.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrGrantInvalid
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint status %d", ErrUnreachable, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	return &tr, nil
}

func (c *HTTPClient) SendBatch(ctx context.Context, accessToken string, batch Batch) (*BatchResult, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}

	u := c.baseURL + "/v1/messages/batch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	// Any non-200 is an ambiguous or failed batch; the caller must treat it
	// as whole-batch failure and keep the cart intact.
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSendRejected, resp.StatusCode)
	}

	var result BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding batch result: %w", err)
	}
	return &result, nil
}

func classifyError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", ErrUnreachable, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

var _ Client = (*HTTPClient)(nil)
