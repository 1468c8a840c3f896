package feed

import "github.com/unclebandit/jobreach-backend/internal/model"

// LeadView is the in-memory projection a connected client session keeps of
// its lead list. It absorbs out-of-order delivery: an insert for a known id
// acts as an update, an update/delete for an unknown id is a no-op, and an
// update replaces the item in place so the rest of the list never reorders
// under the user.
type LeadView struct {
	leads []model.Lead
	index map[int]int // lead id -> position in leads
}

func NewLeadView(initial []model.Lead) *LeadView {
	v := &LeadView{
		leads: make([]model.Lead, 0, len(initial)),
		index: make(map[int]int, len(initial)),
	}
	for _, l := range initial {
		v.Apply(Event{Op: OpInsert, Lead: l})
	}
	return v
}

func (v *LeadView) Apply(e Event) {
	pos, known := v.index[e.Lead.ID]
	switch e.Op {
	case OpInsert:
		if known {
			v.leads[pos] = e.Lead
			return
		}
		v.index[e.Lead.ID] = len(v.leads)
		v.leads = append(v.leads, e.Lead)
	case OpUpdate:
		if !known {
			return
		}
		v.leads[pos] = e.Lead
	case OpDelete:
		if !known {
			return
		}
		v.leads = append(v.leads[:pos], v.leads[pos+1:]...)
		delete(v.index, e.Lead.ID)
		for i := pos; i < len(v.leads); i++ {
			v.index[v.leads[i].ID] = i
		}
	}
}

// Leads returns a copy of the current list in stable order.
func (v *LeadView) Leads() []model.Lead {
	out := make([]model.Lead, len(v.leads))
	copy(out, v.leads)
	return out
}

func (v *LeadView) Len() int {
	return len(v.leads)
}
