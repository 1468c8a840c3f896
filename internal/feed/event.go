package feed

import (
	"encoding/json"

	"github.com/unclebandit/jobreach-backend/internal/model"
)

// Channel is the Postgres NOTIFY channel carrying lead change events.
const Channel = "lead_events"

// Event operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event is one row-level change on the leads table. Events for a single lead
// id are causally ordered (insert before its updates/deletes); cross-lead
// ordering is not guaranteed.
type Event struct {
	Op   string     `json:"op"`
	Lead model.Lead `json:"lead"`
}

func (e Event) Marshal() (string, error) {
	b, err := json.Marshal(e)
	return string(b), err
}

func Unmarshal(payload string) (Event, error) {
	var e Event
	err := json.Unmarshal([]byte(payload), &e)
	return e, err
}
