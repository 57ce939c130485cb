// Package queue - lifecycle.go
// Startup rehydration and shutdown flush.
package queue

import (
	"context"
	"fmt"
	"log"
)

// Rehydrate overwrites the in-memory defaults with the last persisted
// records. It runs once before commands are accepted. On a store failure every
// gamemode keeps its default closed state and the error is returned for the
// caller to log.
func (r *Registry) Rehydrate(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	recs, err := r.store.LoadAll(ctx)
	if err != nil {
		log.Printf("[registry] rehydrate: load failed, keeping defaults: %v", err)
		return 0, fmt.Errorf("rehydrate: %w", err)
	}

	n := 0
	for gm, s := range recs {
		e, ok := r.entries[gm]
		if !ok {
			log.Printf("[registry] rehydrate: ignoring unknown gamemode %q", gm)
			continue
		}
		q := fromStored(s)

		e.mu.Lock()
		e.q = q
		e.version++
		// an open queue without a display gets a fresh one on the next change
		if q.IsOpen && q.MessageID == "" {
			e.session++
		}
		e.mu.Unlock()

		n++
		log.Printf("[registry] rehydrated gm=%s open=%t players=%d testers=%d", gm, q.IsOpen, len(q.Players), len(q.ActiveTesters))
	}
	return n, nil
}

// fromStored fills absent fields with defaults and restores the record
// invariants legacy documents may violate.
func fromStored(s Stored) Queue {
	q := Queue{
		Players:       uniq(s.Players),
		ActiveTesters: uniq(s.ActiveTesters),
		OpenedAt:      copyTime(s.OpenedAt),
		LastOpenedAt:  copyTime(s.LastOpenedAt),
		ClosedAt:      copyTime(s.ClosedAt),
	}
	if s.IsOpen != nil {
		q.IsOpen = *s.IsOpen
	}
	q.ChannelID = deref(s.ChannelID)
	q.MessageID = deref(s.MessageID)
	q.OpenedBy = deref(s.OpenedBy)
	q.ClosedBy = deref(s.ClosedBy)
	q.CloseReason = deref(s.CloseReason)
	q.Region = deref(s.Region)

	if q.OpenedBy != "" {
		if i := indexOf(q.Players, q.OpenedBy); i >= 0 {
			q.Players = append(q.Players[:i:i], q.Players[i+1:]...)
		}
		// records written before testers were tracked
		if q.IsOpen && len(q.ActiveTesters) == 0 {
			q.ActiveTesters = []string{q.OpenedBy}
		}
	}
	return q
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PersistAll flushes every record to the store, best effort. It waits for
// pending renders first and returns the number of failed upserts.
func (r *Registry) PersistAll(ctx context.Context) int {
	r.Wait()
	if r.store == nil {
		return 0
	}
	failed := 0
	for _, gm := range gamemodes {
		if err := r.storeLatest(ctx, gm, r.entries[gm], true); err != nil {
			failed++
			log.Printf("[registry] shutdown persist gm=%s: %v", gm, err)
		}
	}
	log.Printf("[registry] shutdown persist done (%d/%d ok)", len(gamemodes)-failed, len(gamemodes))
	return failed
}
