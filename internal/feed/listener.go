package feed

import (
	"context"
	"log"
	"time"

	"github.com/lib/pq"
)

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
)

// Listener bridges Postgres NOTIFY into the in-process hub. The worker
// process writes leads and calls pg_notify; the API process runs a Listener
// so connected clients see changes without polling.
type Listener struct {
	hub *Hub
	pql *pq.Listener
}

func NewListener(databaseURL string, hub *Hub) (*Listener, error) {
	pql := pq.NewListener(databaseURL, minReconnectInterval, maxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Println("⚠️ feed listener event:", ev, err)
		}
	})
	if err := pql.Listen(Channel); err != nil {
		pql.Close()
		return nil, err
	}
	return &Listener{hub: hub, pql: pql}, nil
}

// Run pumps notifications into the hub until ctx is cancelled. A nil
// notification means the connection was re-established; events sent while
// disconnected are gone, which is fine — clients re-snapshot from the table.
func (l *Listener) Run(ctx context.Context) {
	defer l.pql.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.pql.Notify:
			if n == nil {
				continue
			}
			e, err := Unmarshal(n.Extra)
			if err != nil {
				log.Println("⚠️ dropping malformed lead event:", err)
				continue
			}
			l.hub.Publish(e)
		case <-time.After(90 * time.Second):
			go l.pql.Ping()
		}
	}
}
