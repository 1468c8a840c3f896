package model

import "time"

// CredentialGrant is the durable, refreshable authorization for the
// mail-dispatch provider. "Disconnected" in the UI does not imply this row is
// gone: the presentation-layer session marker can time out while the grant
// stays valid.
type CredentialGrant struct {
	OwnerEmail     string    `db:"owner_email" json:"owner_email"`
	AccountAddress string    `db:"account_address" json:"account_address"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ExpiredAt reports whether the access token is expired at the given instant.
func (g *CredentialGrant) ExpiredAt(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
