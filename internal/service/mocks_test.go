package service

import (
	"context"
	"time"

	"github.com/unclebandit/jobreach-backend/internal/mailer"
	"github.com/unclebandit/jobreach-backend/internal/model"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
)

// fakeStore is an in-memory cache.Store with call counters so tests can
// assert which operations ran.
type fakeStore struct {
	carts     map[string][]model.CartItem
	sessions  map[string]time.Time
	putCalls  int
	clearCall int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:    make(map[string][]model.CartItem),
		sessions: make(map[string]time.Time),
	}
}

func (s *fakeStore) CartGet(ctx context.Context, owner string) ([]model.CartItem, error) {
	return append([]model.CartItem{}, s.carts[owner]...), nil
}

func (s *fakeStore) CartPut(ctx context.Context, owner string, items []model.CartItem) error {
	s.putCalls++
	s.carts[owner] = append([]model.CartItem{}, items...)
	return nil
}

func (s *fakeStore) CartClear(ctx context.Context, owner string) error {
	s.clearCall++
	delete(s.carts, owner)
	return nil
}

func (s *fakeStore) SessionLastActivity(ctx context.Context, owner string) (time.Time, bool, error) {
	at, ok := s.sessions[owner]
	return at, ok, nil
}

func (s *fakeStore) TouchSession(ctx context.Context, owner string, at time.Time, ttl time.Duration) error {
	s.sessions[owner] = at
	return nil
}

func (s *fakeStore) ClearSession(ctx context.Context, owner string) error {
	delete(s.sessions, owner)
	return nil
}

// fakeLeadRepo implements repository.LeadRepositoryInterface over a map.
type fakeLeadRepo struct {
	leads      map[int]*model.Lead
	appliedIDs []int
	markErr    error
	listByIDsN int
}

func newFakeLeadRepo(leads ...*model.Lead) *fakeLeadRepo {
	r := &fakeLeadRepo{leads: make(map[int]*model.Lead)}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

func (r *fakeLeadRepo) Upsert(l *model.Lead) (bool, error) {
	_, existed := r.leads[l.ID]
	r.leads[l.ID] = l
	return !existed, nil
}

func (r *fakeLeadRepo) GetByID(id int) (*model.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, appErrors.NewNotFound("lead", id)
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLeadRepo) ListByOwner(owner string) ([]model.Lead, error) {
	var out []model.Lead
	for _, l := range r.leads {
		if l.OwnerEmail == owner {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) ListByIDs(ids []int) ([]model.Lead, error) {
	r.listByIDsN++
	var out []model.Lead
	for _, id := range ids {
		if l, ok := r.leads[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLeadRepo) MarkApplied(ids []int) error {
	if r.markErr != nil {
		return r.markErr
	}
	for _, id := range ids {
		if l, ok := r.leads[id]; ok {
			l.Status = model.LeadApplied
		}
	}
	r.appliedIDs = append(r.appliedIDs, ids...)
	return nil
}

func (r *fakeLeadRepo) Delete(id int) error {
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) StatsByOwner(owner string) (map[string]int, error) {
	stats := map[string]int{"new": 0, "applied": 0}
	for _, l := range r.leads {
		if l.OwnerEmail == owner {
			stats[l.Status]++
		}
	}
	return stats, nil
}

// fakeResolver stands in for the credential manager at dispatch time.
type fakeResolver struct {
	token string
	err   error
	calls int
}

func (r *fakeResolver) ResolveToken(ctx context.Context, owner string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.token, nil
}

// fakeSender records the batch it was handed and returns a canned result.
type fakeSender struct {
	result    *mailer.BatchResult
	err       error
	calls     int
	lastBatch mailer.Batch
}

func (s *fakeSender) SendBatch(ctx context.Context, accessToken string, batch mailer.Batch) (*mailer.BatchResult, error) {
	s.calls++
	s.lastBatch = batch
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// memCampaignRepo enforces the one-active-campaign rule the way the partial
// unique index does in Postgres.
type memCampaignRepo struct {
	byID   map[int]*model.Campaign
	nextID int
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{byID: make(map[int]*model.Campaign), nextID: 1}
}

func (r *memCampaignRepo) Create(c *model.Campaign) error {
	for _, existing := range r.byID {
		if existing.OwnerEmail == c.OwnerEmail && existing.Active() {
			return appErrors.NewConflict(c.OwnerEmail)
		}
	}
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, appErrors.NewNotFound("campaign", id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) ListByOwner(owner string, offset, limit int, status string) ([]*model.Campaign, int, error) {
	var all []*model.Campaign
	for _, c := range r.byID {
		if c.OwnerEmail == owner && (status == "" || c.Status == status) {
			cp := *c
			all = append(all, &cp)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memCampaignRepo) Update(c *model.Campaign) error {
	existing, ok := r.byID[c.ID]
	if !ok {
		return appErrors.NewNotFound("campaign", c.ID)
	}
	existing.Criteria = c.Criteria
	existing.CVRef = c.CVRef
	existing.CoverLetterRef = c.CoverLetterRef
	return nil
}

func (r *memCampaignRepo) MarkStatus(id int, status string) (bool, error) {
	c, ok := r.byID[id]
	if !ok || !c.Active() {
		return false, nil
	}
	c.Status = status
	return true, nil
}

func (r *memCampaignRepo) Delete(id int, owner string) error {
	c, ok := r.byID[id]
	if !ok || c.OwnerEmail != owner {
		return appErrors.NewNotFound("campaign", id)
	}
	delete(r.byID, id)
	return nil
}

// fakeQueue implements queue.Queue; publishes can be failed on demand.
type fakeQueue struct {
	published  [][]byte
	topics     []string
	publishErr error
}

func (q *fakeQueue) Publish(topic string, body []byte) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.topics = append(q.topics, topic)
	q.published = append(q.published, body)
	return nil
}

func (q *fakeQueue) Subscribe(topic string, handler func([]byte) error) error {
	return nil
}
