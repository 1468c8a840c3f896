package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListByOwner(owner string, offset, limit int, status string) ([]*model.Campaign, int, error)
	Update(c *model.Campaign) error
	MarkStatus(id int, status string) (bool, error)
	Delete(id int, owner string) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, owner_email, criteria, cv_ref, cover_letter_ref, status, created_at, updated_at`

// Create persists a new campaign in pending state. The partial unique index
// campaigns_one_active_per_owner turns a second active campaign for the same
// owner into a ConflictError, closing the two-tab race.
func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.CampaignPending
	}
	query := `
        INSERT INTO campaigns (owner_email, criteria, cv_ref, cover_letter_ref, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	err := r.DB.QueryRow(query, c.OwnerEmail, c.Criteria, c.CVRef, c.CoverLetterRef, c.Status, c.CreatedAt).Scan(&c.ID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "campaigns_one_active_per_owner" {
		return appErrors.NewConflict(c.OwnerEmail)
	}
	return err
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id=$1`, campaignColumns)
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.OwnerEmail, &c.Criteria, &c.CVRef, &c.CoverLetterRef, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListByOwner(owner string, offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE owner_email=$1`, campaignColumns)
	args := []interface{}{owner}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &model.Campaign{}
		if err := rows.Scan(&c.ID, &c.OwnerEmail, &c.Criteria, &c.CVRef, &c.CoverLetterRef, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE owner_email=$1`
	countArgs := []interface{}{owner}
	if status != "" {
		countQuery += " AND status=$2"
		countArgs = append(countArgs, status)
	}
	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// Update rewrites criteria and attachment references in place. Status is
// deliberately untouched; only MarkStatus moves it.
func (r *CampaignRepository) Update(c *model.Campaign) error {
	query := `
        UPDATE campaigns
        SET criteria=$1, cv_ref=$2, cover_letter_ref=$3, updated_at=NOW()
        WHERE id=$4
    `
	_, err := r.DB.Exec(query, c.Criteria, c.CVRef, c.CoverLetterRef, c.ID)
	return err
}

// MarkStatus applies the discovery provider's completion signal. The WHERE
// guard only allows pending/processing rows to transition; the bool reports
// whether a row actually moved.
func (r *CampaignRepository) MarkStatus(id int, status string) (bool, error) {
	query := `
        UPDATE campaigns SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status IN ('pending', 'processing')
    `
	res, err := r.DB.Exec(query, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CampaignRepository) Delete(id int, owner string) error {
	res, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1 AND owner_email=$2`, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return appErrors.NewNotFound("campaign", id)
	}
	return nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
