package credential

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/mailer"
	"github.com/unclebandit/jobreach-backend/internal/model"
	"github.com/unclebandit/jobreach-backend/internal/repository"
)

// SessionStore is the slice of the session cache the manager needs: the
// presentation-layer activity marker, nothing durable.
type SessionStore interface {
	SessionLastActivity(ctx context.Context, owner string) (time.Time, bool, error)
	TouchSession(ctx context.Context, owner string, at time.Time, ttl time.Duration) error
	ClearSession(ctx context.Context, owner string) error
}

// Status is a point-in-time read of the credential state. Connected refers to
// the durable grant; SessionActive is the separate presentation-layer view.
// Connected && !SessionActive means the UI shows disconnected while the grant
// is still recoverable without a new authorization flow.
type Status struct {
	Connected      bool       `json:"connected"`
	Expired        bool       `json:"expired"`
	SessionActive  bool       `json:"session_active"`
	AccountAddress string     `json:"account_address,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// Manager drives the connect/status/refresh/disconnect lifecycle of the
// mail-provider grant and enforces the inactivity rule.
type Manager struct {
	Grants   repository.CredentialRepositoryInterface
	Sessions SessionStore
	Provider mailer.Client

	InactivityThreshold time.Duration

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// InitiateConnect returns the provider authorization URL for the owner to
// navigate to. Completion is observed later via CompleteConnect and Status.
func (m *Manager) InitiateConnect(owner string) string {
	return m.Provider.AuthorizeURL(owner)
}

// CompleteConnect exchanges the authorization code from the redirect callback
// and persists the grant. A fresh session marker is derived immediately.
func (m *Manager) CompleteConnect(ctx context.Context, owner, code string) error {
	data, err := m.Provider.Exchange(ctx, code)
	if err != nil {
		return appErrors.NewUpstream("authorization exchange", err)
	}
	grant := &model.CredentialGrant{
		OwnerEmail:     owner,
		AccountAddress: data.AccountAddress,
		AccessToken:    data.AccessToken,
		RefreshToken:   data.RefreshToken,
		ExpiresAt:      data.ExpiresAt,
	}
	if err := m.Grants.Upsert(grant); err != nil {
		return err
	}
	return m.Sessions.TouchSession(ctx, owner, m.now(), m.InactivityThreshold)
}

// Status is a pure read: it never mutates the grant or the session marker.
func (m *Manager) Status(ctx context.Context, owner string) (*Status, error) {
	grant, err := m.Grants.Get(owner)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return &Status{}, nil
	}
	now := m.now()
	active, err := m.sessionActive(ctx, owner, now)
	if err != nil {
		return nil, err
	}
	return &Status{
		Connected:      true,
		Expired:        grant.ExpiredAt(now),
		SessionActive:  active,
		AccountAddress: grant.AccountAddress,
		ExpiresAt:      &grant.ExpiresAt,
	}, nil
}

// ConfirmSession re-derives the session marker after an idle timeout, but
// only when the durable grant is present and not expired. This is the
// explicit re-confirmation step before the send capability is reusable.
func (m *Manager) ConfirmSession(ctx context.Context, owner string) (*Status, error) {
	st, err := m.Status(ctx, owner)
	if err != nil {
		return nil, err
	}
	if st.Connected && !st.Expired && !st.SessionActive {
		if err := m.Sessions.TouchSession(ctx, owner, m.now(), m.InactivityThreshold); err != nil {
			return nil, err
		}
		st.SessionActive = true
	}
	return st, nil
}

// TouchActivity refreshes the marker on meaningful user interaction. Only
// sessions that are still active are extended; an idle session must go
// through ConfirmSession instead.
func (m *Manager) TouchActivity(ctx context.Context, owner string) error {
	active, err := m.sessionActive(ctx, owner, m.now())
	if err != nil || !active {
		return err
	}
	return m.Sessions.TouchSession(ctx, owner, m.now(), m.InactivityThreshold)
}

// DisconnectView clears only the presentation-layer marker. The durable grant
// stays untouched.
func (m *Manager) DisconnectView(ctx context.Context, owner string) error {
	return m.Sessions.ClearSession(ctx, owner)
}

// Refresh exchanges the refresh token for a new access token and persists it.
// A provider rejection of the refresh token itself is terminal.
func (m *Manager) Refresh(ctx context.Context, owner string) (string, error) {
	grant, err := m.Grants.Get(owner)
	if err != nil {
		return "", err
	}
	if grant == nil {
		return "", appErrors.NewValidation("credential")
	}
	token, err := m.Provider.Refresh(ctx, grant.RefreshToken)
	if err != nil {
		if errors.Is(err, mailer.ErrGrantInvalid) {
			return "", appErrors.NewGrantInvalid(owner)
		}
		return "", appErrors.NewUpstream("token refresh", err)
	}
	if err := m.Grants.UpdateToken(owner, token.AccessToken, token.ExpiresAt); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// ResolveToken implements the dispatch-time contract: check status, refresh
// exactly once if expired, and on a rejected refresh revoke the durable
// connected state so the UI drops back to disconnected.
func (m *Manager) ResolveToken(ctx context.Context, owner string) (string, error) {
	grant, err := m.Grants.Get(owner)
	if err != nil {
		return "", err
	}
	if grant == nil {
		return "", appErrors.NewValidation("credential")
	}

	// Initiating a send is qualifying activity.
	if err := m.Sessions.TouchSession(ctx, owner, m.now(), m.InactivityThreshold); err != nil {
		return "", err
	}

	if !grant.ExpiredAt(m.now()) {
		return grant.AccessToken, nil
	}

	token, err := m.Provider.Refresh(ctx, grant.RefreshToken)
	if err != nil {
		if errors.Is(err, mailer.ErrGrantInvalid) {
			if delErr := m.Grants.Delete(owner); delErr != nil {
				return "", delErr
			}
			_ = m.Sessions.ClearSession(ctx, owner)
			return "", appErrors.NewReauthRequired(owner)
		}
		return "", appErrors.NewUpstream("token refresh", err)
	}
	if err := m.Grants.UpdateToken(owner, token.AccessToken, token.ExpiresAt); err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (m *Manager) sessionActive(ctx context.Context, owner string, now time.Time) (bool, error) {
	last, ok, err := m.Sessions.SessionLastActivity(ctx, owner)
	if err != nil {
		return false, err
	}
	// Disconnected is presented at or after the threshold, never before.
	return ok && now.Sub(last) < m.InactivityThreshold, nil
}
