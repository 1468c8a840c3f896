package repository

import (
	"database/sql"
	"log"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/feed"
	"github.com/unclebandit/jobreach-backend/internal/model"
)

type LeadRepositoryInterface interface {
	Upsert(l *model.Lead) (bool, error)
	GetByID(id int) (*model.Lead, error)
	ListByOwner(owner string) ([]model.Lead, error)
	ListByIDs(ids []int) ([]model.Lead, error)
	MarkApplied(ids []int) error
	Delete(id int) error
	StatsByOwner(owner string) (map[string]int, error)
}

// LeadRepository persists leads and emits a pg_notify event for every
// mutation so feed listeners in other processes see the change.
type LeadRepository struct {
	DB *sql.DB
}

const leadColumns = `id, owner_email, title, company, platform, url, status, metadata, created_at, updated_at`

// Upsert inserts a discovered lead or, when the provider replays a row for
// the same (owner, url), updates it in place. Returns true when the row was
// newly inserted. xmax = 0 only holds for freshly inserted tuples.
func (r *LeadRepository) Upsert(l *model.Lead) (bool, error) {
	query := `
        INSERT INTO leads (owner_email, title, company, platform, url, status, metadata)
        VALUES ($1, $2, $3, $4, $5, 'new', $6)
        ON CONFLICT (owner_email, url) DO UPDATE
        SET title=EXCLUDED.title, company=EXCLUDED.company, platform=EXCLUDED.platform,
            metadata=EXCLUDED.metadata, updated_at=NOW()
        RETURNING id, status, created_at, updated_at, (xmax = 0)
    `
	var inserted bool
	err := r.DB.QueryRow(query, l.OwnerEmail, l.Title, l.Company, l.Platform, l.URL, l.Metadata).
		Scan(&l.ID, &l.Status, &l.CreatedAt, &l.UpdatedAt, &inserted)
	if err != nil {
		return false, err
	}

	op := feed.OpUpdate
	if inserted {
		op = feed.OpInsert
	}
	r.notify(op, *l)
	return inserted, nil
}

func (r *LeadRepository) GetByID(id int) (*model.Lead, error) {
	var l model.Lead
	err := r.DB.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE id=$1`, id).Scan(
		&l.ID, &l.OwnerEmail, &l.Title, &l.Company, &l.Platform, &l.URL, &l.Status, &l.Metadata, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewNotFound("lead", id)
		}
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) ListByOwner(owner string) ([]model.Lead, error) {
	rows, err := r.DB.Query(`SELECT `+leadColumns+` FROM leads WHERE owner_email=$1 ORDER BY id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (r *LeadRepository) ListByIDs(ids []int) ([]model.Lead, error) {
	if len(ids) == 0 {
		return []model.Lead{}, nil
	}
	rows, err := r.DB.Query(`SELECT `+leadColumns+` FROM leads WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeads(rows)
}

// MarkApplied flips the given leads to applied as the side effect of a
// successful dispatch, emitting an update event per lead.
func (r *LeadRepository) MarkApplied(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
        UPDATE leads SET status='applied', updated_at=NOW()
        WHERE id = ANY($1)
        RETURNING ` + leadColumns
	rows, err := r.DB.Query(query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	updated, err := scanLeads(rows)
	if err != nil {
		return err
	}
	for _, l := range updated {
		r.notify(feed.OpUpdate, l)
	}
	return nil
}

// Delete removes a lead on behalf of the discovery provider. Clients never
// delete leads themselves.
func (r *LeadRepository) Delete(id int) error {
	var l model.Lead
	err := r.DB.QueryRow(`DELETE FROM leads WHERE id=$1 RETURNING `+leadColumns, id).Scan(
		&l.ID, &l.OwnerEmail, &l.Title, &l.Company, &l.Platform, &l.URL, &l.Status, &l.Metadata, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	r.notify(feed.OpDelete, l)
	return nil
}

func (r *LeadRepository) StatsByOwner(owner string) (map[string]int, error) {
	rows, err := r.DB.Query(`SELECT status, COUNT(*) FROM leads WHERE owner_email=$1 GROUP BY status`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"new": 0, "applied": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// notify publishes the change on the lead_events channel. A failed notify is
// logged, not returned: the durable write already happened and feed delivery
// is best-effort push on top of a pollable table.
func (r *LeadRepository) notify(op string, l model.Lead) {
	payload, err := feed.Event{Op: op, Lead: l}.Marshal()
	if err != nil {
		log.Println("⚠️ failed to marshal lead event:", err)
		return
	}
	if _, err := r.DB.Exec(`SELECT pg_notify($1, $2)`, feed.Channel, payload); err != nil {
		log.Println("⚠️ failed to notify lead event:", err)
	}
}

func scanLeads(rows *sql.Rows) ([]model.Lead, error) {
	leads := []model.Lead{}
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.OwnerEmail, &l.Title, &l.Company, &l.Platform, &l.URL, &l.Status, &l.Metadata, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
