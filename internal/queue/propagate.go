// Package queue - propagate.go
// Pushes committed revisions to the store and the notifier.
package queue

import (
	"context"
	"errors"
	"log"
)

// propagate persists rev before returning and then renders it in the
// background. Rendering of one gamemode is serialized; a revision older than
// one already rendered is skipped so the display never goes backwards. A newly
// bound display message is persisted before the render finishes.
func (r *Registry) propagate(ctx context.Context, gm Gamemode, e *entry, rev revision) {
	_ = r.persist(ctx, gm, e, rev.op)
	if r.notifier == nil {
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()

		e.pmu.Lock()
		defer e.pmu.Unlock()

		if rev.version <= e.propagated {
			log.Printf("[registry] stale %s render skipped gm=%s v=%d (already at v=%d)", rev.op, gm, rev.version, e.propagated)
			return
		}
		e.propagated = rev.version

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.PropagationTimeout)
		defer cancel()

		if r.render(pctx, gm, e, rev) {
			_ = r.persist(ctx, gm, e, rev.op+"/bind")
		}
	}()
}

// render updates the display for rev. It reports whether the message bound
// to the record changed. Must be called with e.pmu held.
func (r *Registry) render(ctx context.Context, gm Gamemode, e *entry, rev revision) bool {
	msgID := e.messageID()
	q := rev.q
	q.MessageID = msgID

	switch {
	case q.IsOpen && (e.bound != rev.session || msgID == ""):
		return r.renderOpen(ctx, gm, e, rev, q)

	case msgID == "":
		log.Printf("[registry] notify %s gm=%s: no display message bound, skipping", rev.op, gm)

	case q.IsOpen:
		err := r.notifier.RenderUpdate(ctx, gm, q, msgID)
		if errors.Is(err, ErrDisplayGone) {
			log.Printf("[registry] notify %s gm=%s msg=%s: display gone, posting a new one", rev.op, gm, msgID)
			e.clearMessage(msgID)
			q.MessageID = ""
			r.renderOpen(ctx, gm, e, rev, q)
			return true
		}
		if err != nil {
			log.Printf("[registry] notify %s gm=%s msg=%s: render update: %v", rev.op, gm, msgID, err)
		}

	default:
		err := r.notifier.RenderClosed(ctx, gm, q, msgID)
		if errors.Is(err, ErrDisplayGone) {
			log.Printf("[registry] notify %s gm=%s msg=%s: display gone, unbinding", rev.op, gm, msgID)
			return e.clearMessage(msgID)
		}
		if err != nil {
			log.Printf("[registry] notify %s gm=%s msg=%s: render closed: %v", rev.op, gm, msgID, err)
		}
	}
	return false
}

// renderOpen posts a fresh display for rev's session and binds it.
func (r *Registry) renderOpen(ctx context.Context, gm Gamemode, e *entry, rev revision, q Queue) bool {
	id, err := r.notifier.RenderOpen(ctx, gm, q)
	if err != nil {
		log.Printf("[registry] notify %s gm=%s: render open: %v", rev.op, gm, err)
		return false
	}
	e.bound = rev.session
	if !e.bindMessage(rev.session, id) {
		log.Printf("[registry] notify %s gm=%s: session superseded, message %s left unbound", rev.op, gm, id)
		return false
	}
	return true
}

// persist writes the latest record of gm on its own deadline, detached from
// the caller's cancellation. Failures are logged and returned; the in-memory
// record stays authoritative.
func (r *Registry) persist(ctx context.Context, gm Gamemode, e *entry, op string) error {
	if r.store == nil {
		return nil
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.PropagationTimeout)
	defer cancel()
	if err := r.storeLatest(sctx, gm, e, false); err != nil {
		log.Printf("[registry] persist %s gm=%s: %v", op, gm, err)
		return err
	}
	return nil
}

// storeLatest upserts the current record of gm. Writes of one gamemode are
// serialized and a version already stored is not written again unless force
// is set, so the stored record never regresses.
func (r *Registry) storeLatest(ctx context.Context, gm Gamemode, e *entry, force bool) error {
	e.smu.Lock()
	defer e.smu.Unlock()

	e.mu.Lock()
	version, q := e.version, snapshot(&e.q)
	e.mu.Unlock()

	if !force && version <= e.stored {
		return nil
	}
	if err := r.store.Upsert(ctx, gm, q); err != nil {
		return err
	}
	if version > e.stored {
		e.stored = version
	}
	return nil
}

func (e *entry) messageID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q.MessageID
}

// bindMessage records id as the display of session, unless a newer session
// has started meanwhile.
func (e *entry) bindMessage(session uint64, id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != session {
		return false
	}
	e.q.MessageID = id
	e.version++
	return true
}

// clearMessage forgets id if it is still the bound display.
func (e *entry) clearMessage(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.q.MessageID != id {
		return false
	}
	e.q.MessageID = ""
	e.version++
	return true
}
