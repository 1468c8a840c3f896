package repository

import (
	"database/sql"
	"time"

	"github.com/unclebandit/jobreach-backend/internal/model"
)

type CredentialRepositoryInterface interface {
	Get(owner string) (*model.CredentialGrant, error)
	Upsert(g *model.CredentialGrant) error
	UpdateToken(owner, accessToken string, expiresAt time.Time) error
	Delete(owner string) error
}

type CredentialRepository struct {
	DB *sql.DB
}

// Get returns the owner's grant, or nil when no durable grant exists. nil is
// a meaningful answer here, not an error: "no grant" and "session timed out"
// are different disconnected states.
func (r *CredentialRepository) Get(owner string) (*model.CredentialGrant, error) {
	query := `
        SELECT owner_email, account_address, access_token, refresh_token, expires_at, created_at, updated_at
        FROM credential_grants WHERE owner_email=$1
    `
	var g model.CredentialGrant
	err := r.DB.QueryRow(query, owner).Scan(
		&g.OwnerEmail, &g.AccountAddress, &g.AccessToken, &g.RefreshToken, &g.ExpiresAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// Upsert stores the grant produced by a completed authorization flow,
// replacing any previous grant for the owner.
func (r *CredentialRepository) Upsert(g *model.CredentialGrant) error {
	query := `
        INSERT INTO credential_grants (owner_email, account_address, access_token, refresh_token, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (owner_email) DO UPDATE
        SET account_address=EXCLUDED.account_address, access_token=EXCLUDED.access_token,
            refresh_token=EXCLUDED.refresh_token, expires_at=EXCLUDED.expires_at, updated_at=NOW()
        RETURNING created_at, updated_at
    `
	return r.DB.QueryRow(query, g.OwnerEmail, g.AccountAddress, g.AccessToken, g.RefreshToken, g.ExpiresAt).
		Scan(&g.CreatedAt, &g.UpdatedAt)
}

// UpdateToken persists a refreshed access token in place. The refresh token
// itself is unchanged; the provider rotates it only through a full reconnect.
func (r *CredentialRepository) UpdateToken(owner, accessToken string, expiresAt time.Time) error {
	query := `
        UPDATE credential_grants SET access_token=$1, expires_at=$2, updated_at=NOW()
        WHERE owner_email=$3
    `
	_, err := r.DB.Exec(query, accessToken, expiresAt, owner)
	return err
}

func (r *CredentialRepository) Delete(owner string) error {
	_, err := r.DB.Exec(`DELETE FROM credential_grants WHERE owner_email=$1`, owner)
	return err
}

var _ CredentialRepositoryInterface = (*CredentialRepository)(nil)
