package feed

import (
	"testing"

	"github.com/unclebandit/jobreach-backend/internal/model"
)

func lead(id int, title string) model.Lead {
	return model.Lead{ID: id, OwnerEmail: "alice@example.com", Title: title, Company: "Acme", Status: model.LeadNew}
}

func ids(leads []model.Lead) []int {
	out := make([]int, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func TestViewInsertIdempotent(t *testing.T) {
	v := NewLeadView(nil)
	v.Apply(Event{Op: OpInsert, Lead: lead(1, "Backend Engineer")})
	v.Apply(Event{Op: OpInsert, Lead: lead(2, "Go Developer")})

	// Replayed insert for a known id must act as an update, not a duplicate.
	v.Apply(Event{Op: OpInsert, Lead: lead(1, "Senior Backend Engineer")})

	leads := v.Leads()
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}
	if leads[0].Title != "Senior Backend Engineer" {
		t.Errorf("expected replayed insert to update in place, got %q", leads[0].Title)
	}
}

func TestViewUpdateInPlace(t *testing.T) {
	v := NewLeadView([]model.Lead{lead(1, "A"), lead(2, "B"), lead(3, "C")})

	v.Apply(Event{Op: OpUpdate, Lead: lead(2, "B-prime")})

	got := ids(v.Leads())
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order changed on update: got %v, want %v", got, want)
		}
	}
	if v.Leads()[1].Title != "B-prime" {
		t.Errorf("expected B replaced in place, got %q", v.Leads()[1].Title)
	}
}

func TestViewUnknownIDNoOp(t *testing.T) {
	v := NewLeadView([]model.Lead{lead(1, "A")})

	v.Apply(Event{Op: OpUpdate, Lead: lead(99, "ghost")})
	v.Apply(Event{Op: OpDelete, Lead: lead(42, "ghost")})

	if v.Len() != 1 {
		t.Fatalf("expected 1 lead after no-op events, got %d", v.Len())
	}
}

func TestViewDeleteReindexes(t *testing.T) {
	v := NewLeadView([]model.Lead{lead(1, "A"), lead(2, "B"), lead(3, "C")})

	v.Apply(Event{Op: OpDelete, Lead: lead(2, "B")})

	got := ids(v.Leads())
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected [1 3] after delete, got %v", got)
	}

	// The reindexed tail must still accept in-place updates.
	v.Apply(Event{Op: OpUpdate, Lead: lead(3, "C-prime")})
	if v.Leads()[1].Title != "C-prime" {
		t.Errorf("index stale after delete: got %q", v.Leads()[1].Title)
	}
}
