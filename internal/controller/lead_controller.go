package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	appErrors "github.com/unclebandit/jobreach-backend/internal/errors"
	"github.com/unclebandit/jobreach-backend/internal/feed"
	"github.com/unclebandit/jobreach-backend/internal/repository"
)

type LeadController struct {
	LeadRepo repository.LeadRepositoryInterface
	Hub      *feed.Hub
}

func (c *LeadController) ListLeads(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	leads, err := c.LeadRepo.ListByOwner(owner)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": leads})
}

// Feed streams the owner's lead changes over SSE. The first message is a
// snapshot; every change event is applied to a server-side LeadView before
// forwarding so the reported list length always matches what an idempotent
// client would hold.
func (c *LeadController) Feed(w http.ResponseWriter, r *http.Request) {
	owner := requestOwner(r)
	if owner == "" {
		writeError(w, appErrors.NewValidation("owner"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errBody("internal_error", "streaming unsupported"))
		return
	}

	// Subscribe before the snapshot read so no event can fall between them.
	sub := c.Hub.Subscribe(owner)
	defer sub.Close()

	leads, err := c.LeadRepo.ListByOwner(owner)
	if err != nil {
		writeError(w, err)
		return
	}
	view := feed.NewLeadView(leads)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeSSE(w, "snapshot", map[string]interface{}{"leads": view.Leads()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-sub.C:
			if !open {
				return
			}
			view.Apply(e)
			writeSSE(w, "change", map[string]interface{}{
				"op":    e.Op,
				"lead":  e.Lead,
				"count": view.Len(),
			})
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
}
