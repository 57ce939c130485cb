// internal/app/subscribers.go
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jose-valero/stun-tierlist-bot/internal/domain/events"
	"github.com/jose-valero/stun-tierlist-bot/internal/domain/session"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

const ticketTimeout = 20 * time.Second

func (b *Bot) StartEventSubscribers() func() {
	var cancels []func()

	// ---------- QUEUE PULLED ----------
	cancels = append(cancels, events.Subscribe(b.onPulled))

	// ---------- AUDIT ----------
	cancels = append(cancels, events.Subscribe(func(ev events.QueueOpened) {
		log.Printf("[bus] QueueOpened gm=%s tester=%s region=%s", ev.Gamemode, ev.TesterID, ev.Region)
	}))
	cancels = append(cancels, events.Subscribe(func(ev events.QueueClosed) {
		log.Printf("[bus] QueueClosed gm=%s by=%s reason=%q waiting=%d", ev.Gamemode, ev.ClosedBy, ev.Reason, ev.Waiting)
	}))

	log.Printf("[bus] counts: QueuePulled=%d QueueOpened=%d QueueClosed=%d",
		events.Count[events.QueuePulled](),
		events.Count[events.QueueOpened](),
		events.Count[events.QueueClosed](),
	)

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, c := range cancels {
				c()
			}
		})
	}
}

// onPulled opens the ticket channel and records the session, best effort.
func (b *Bot) onPulled(ev events.QueuePulled) {
	ctx, cancel := context.WithTimeout(context.Background(), ticketTimeout)
	defer cancel()

	rec := session.Record{
		TesterID:  ev.TesterID,
		PlayerID:  ev.PlayerID,
		Gamemode:  ev.Gamemode,
		Timestamp: ev.At,
	}
	if b.Tickets != nil {
		id, err := b.Tickets.Create(ctx, queue.Gamemode(ev.Gamemode), ev.TesterID, ev.PlayerID)
		if err != nil {
			log.Printf("[bus] ticket gm=%s player=%s: %v", ev.Gamemode, ev.PlayerID, err)
		}
		rec.TicketChannelID = id
	}
	if b.Records != nil {
		id, err := b.Records.SaveTestRecord(ctx, rec)
		if err != nil {
			log.Printf("[bus] test record gm=%s player=%s: %v", ev.Gamemode, ev.PlayerID, err)
			return
		}
		log.Printf("[bus] test record %s gm=%s tester=%s player=%s", id, ev.Gamemode, ev.TesterID, ev.PlayerID)
	}
}
