package queue

import (
	"context"
	"errors"
	"log"
	"sync"
)

// entry owns one gamemode's record. mu guards q, version and session; every
// read or write of the record happens under it, so two mutations of the same
// gamemode can never both work on a stale copy.
type entry struct {
	mu      sync.Mutex
	q       Queue
	version uint64 // bumped on every committed mutation
	session uint64 // bumped on every open

	// pmu serializes propagation of this gamemode; fields below are guarded by it.
	pmu        sync.Mutex
	propagated uint64
	bound      uint64 // session whose display has been created

	// smu serializes store writes of this gamemode; stored is guarded by it.
	smu    sync.Mutex
	stored uint64 // last version written to the store
}

// revision is an immutable copy of a record taken at commit time.
type revision struct {
	version uint64
	session uint64
	op      string
	q       Queue
}

// commit must be called with e.mu held.
func (e *entry) commit(op string) revision {
	e.version++
	return revision{version: e.version, session: e.session, op: op, q: snapshot(&e.q)}
}

// Registry is the authoritative in-memory state of every gamemode queue.
// Build one per process and hand it to whoever needs it.
type Registry struct {
	entries  map[Gamemode]*entry
	store    Store
	notifier Notifier
	channels ChannelResolver
	opts     Options

	inflight sync.WaitGroup
}

// NewRegistry allocates a closed, empty record for every gamemode.
func NewRegistry(store Store, notifier Notifier, channels ChannelResolver, opts Options) *Registry {
	r := &Registry{
		entries:  make(map[Gamemode]*entry, len(gamemodes)),
		store:    store,
		notifier: notifier,
		channels: channels,
		opts:     opts.withDefaults(),
	}
	for _, g := range gamemodes {
		r.entries[g] = &entry{q: Queue{Players: []string{}, ActiveTesters: []string{}}}
	}
	return r
}

func (r *Registry) entry(gm Gamemode) (*entry, error) {
	e, ok := r.entries[gm]
	if !ok {
		return nil, ErrQueueNotFound
	}
	return e, nil
}

// Open starts a testing session for gm run by actor. The display channel is
// resolved first; if that fails nothing is mutated.
func (r *Registry) Open(ctx context.Context, gm Gamemode, actor, region string) (Queue, error) {
	e, err := r.entry(gm)
	if err != nil {
		return Queue{}, err
	}
	var channelID string
	if r.channels != nil {
		channelID, _ = r.channels.ResolveChannel(ctx, gm)
	}
	if channelID == "" {
		return Queue{}, ErrChannelNotFound
	}

	e.mu.Lock()
	if e.q.IsOpen {
		if !r.opts.AllowReopen {
			e.mu.Unlock()
			return Queue{}, ErrAlreadyOpen
		}
		log.Printf("[registry] re-arming open queue gm=%s by=%s (dropping %d players)", gm, actor, len(e.q.Players))
	}
	now := r.opts.Now()
	e.session++
	e.q = Queue{
		IsOpen:        true,
		Players:       []string{},
		ActiveTesters: []string{actor},
		ChannelID:     channelID,
		OpenedBy:      actor,
		OpenedAt:      &now,
		LastOpenedAt:  copyTime(&now),
		Region:        region,
	}
	rev := e.commit("open")
	e.mu.Unlock()

	log.Printf("[registry] open gm=%s by=%s region=%s ch=%s", gm, actor, region, channelID)
	r.propagate(ctx, gm, e, rev)
	return rev.q, nil
}

// Close ends the session of gm. Players are kept so the closed display can
// show who was first in line.
func (r *Registry) Close(ctx context.Context, gm Gamemode, actor, reason string) (Queue, error) {
	e, err := r.entry(gm)
	if err != nil {
		return Queue{}, err
	}
	if reason == "" {
		reason = DefaultCloseReason
	}

	e.mu.Lock()
	if !e.q.IsOpen {
		e.mu.Unlock()
		return Queue{}, ErrAlreadyClosed
	}
	now := r.opts.Now()
	e.q.IsOpen = false
	e.q.ClosedBy = actor
	e.q.ClosedAt = &now
	e.q.CloseReason = reason
	rev := e.commit("close")
	e.mu.Unlock()

	log.Printf("[registry] close gm=%s by=%s reason=%q", gm, actor, reason)
	r.propagate(ctx, gm, e, rev)
	return rev.q, nil
}

// CloseAll closes every open queue and returns how many were closed. Each
// gamemode is closed independently.
func (r *Registry) CloseAll(ctx context.Context, actor, reason string) int {
	n := 0
	for _, gm := range gamemodes {
		switch _, err := r.Close(ctx, gm, actor, reason); {
		case err == nil:
			n++
		case errors.Is(err, ErrAlreadyClosed):
		default:
			log.Printf("[registry] closeAll gm=%s: %v", gm, err)
		}
	}
	return n
}

// Join appends player to the wait list and returns its 1-based position.
func (r *Registry) Join(ctx context.Context, gm Gamemode, player string) (int, error) {
	e, err := r.entry(gm)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	switch {
	case !e.q.IsOpen:
		e.mu.Unlock()
		return 0, ErrQueueClosed
	case player == e.q.OpenedBy:
		e.mu.Unlock()
		return 0, ErrSelfJoin
	case indexOf(e.q.Players, player) >= 0:
		e.mu.Unlock()
		return 0, ErrAlreadyQueued
	}
	e.q.Players = append(e.q.Players, player)
	pos := len(e.q.Players)
	rev := e.commit("join")
	e.mu.Unlock()

	log.Printf("[registry] join gm=%s player=%s pos=%d", gm, player, pos)
	r.propagate(ctx, gm, e, rev)
	return pos, nil
}

// Leave removes player from the wait list keeping everybody else in order.
func (r *Registry) Leave(ctx context.Context, gm Gamemode, player string) error {
	e, err := r.entry(gm)
	if err != nil {
		return err
	}

	e.mu.Lock()
	i := indexOf(e.q.Players, player)
	if i < 0 {
		e.mu.Unlock()
		return ErrNotQueued
	}
	e.q.Players = append(e.q.Players[:i:i], e.q.Players[i+1:]...)
	rev := e.commit("leave")
	e.mu.Unlock()

	log.Printf("[registry] leave gm=%s player=%s left=%d", gm, player, len(rev.q.Players))
	r.propagate(ctx, gm, e, rev)
	return nil
}

// Pull dequeues the player that has waited longest.
func (r *Registry) Pull(ctx context.Context, gm Gamemode, tester string) (string, error) {
	e, err := r.entry(gm)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	switch {
	case !e.q.IsOpen:
		e.mu.Unlock()
		return "", ErrQueueClosed
	case len(e.q.Players) == 0:
		e.mu.Unlock()
		return "", ErrQueueEmpty
	}
	head := e.q.Players[0]
	e.q.Players = append([]string{}, e.q.Players[1:]...)
	rev := e.commit("pull")
	e.mu.Unlock()

	log.Printf("[registry] pull gm=%s tester=%s player=%s left=%d", gm, tester, head, len(rev.q.Players))
	r.propagate(ctx, gm, e, rev)
	return head, nil
}

// JoinAsTester adds tester to the testers available on an open queue. There
// is no inverse: testers drop off when the queue is closed or re-opened.
func (r *Registry) JoinAsTester(ctx context.Context, gm Gamemode, tester string) error {
	e, err := r.entry(gm)
	if err != nil {
		return err
	}

	e.mu.Lock()
	switch {
	case !e.q.IsOpen:
		e.mu.Unlock()
		return ErrQueueClosed
	case indexOf(e.q.ActiveTesters, tester) >= 0:
		e.mu.Unlock()
		return ErrAlreadyTester
	}
	e.q.ActiveTesters = append(e.q.ActiveTesters, tester)
	rev := e.commit("tester")
	e.mu.Unlock()

	log.Printf("[registry] tester joined gm=%s tester=%s testers=%d", gm, tester, len(rev.q.ActiveTesters))
	r.propagate(ctx, gm, e, rev)
	return nil
}

// Get returns a copy of gm's record.
func (r *Registry) Get(gm Gamemode) (Queue, error) {
	e, err := r.entry(gm)
	if err != nil {
		return Queue{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(&e.q), nil
}

// Snapshot copies every record.
func (r *Registry) Snapshot() map[Gamemode]Queue {
	out := make(map[Gamemode]Queue, len(r.entries))
	for gm, e := range r.entries {
		e.mu.Lock()
		out[gm] = snapshot(&e.q)
		e.mu.Unlock()
	}
	return out
}

// Wait blocks until every pending display render has finished.
func (r *Registry) Wait() {
	r.inflight.Wait()
}
