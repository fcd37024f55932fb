package telegram

import (
	"context"
	"log"
	"time"

	"hundredbot/services"
)

// Poller long-polls the Bot API and feeds game events into the per-chat
// session queues.
type Poller struct {
	client   *Client
	sessions *services.Sessions
	offset   int64
}

func NewPoller(client *Client, sessions *services.Sessions) *Poller {
	return &Poller{client: client, sessions: sessions}
}

// Run polls until the context is cancelled. Transient API failures are
// logged and retried after a short backoff.
func (p *Poller) Run(ctx context.Context) error {
	log.Println("telegram: poller started")
	for {
		updates, err := p.client.GetUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("telegram: getUpdates failed: %v", err)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			for _, ev := range MapUpdate(u) {
				p.sessions.Dispatch(ev)
			}
		}
	}
}
