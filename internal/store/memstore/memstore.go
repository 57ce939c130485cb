// Package memstore keeps queue records in process memory. It backs
// STORE_BACKEND=memory for local runs and stands in for real stores in tests.
package memstore

import (
	"context"
	"strconv"
	"sync"

	"github.com/jose-valero/stun-tierlist-bot/internal/domain/session"
	"github.com/jose-valero/stun-tierlist-bot/internal/queue"
)

type Store struct {
	mu      sync.Mutex
	records map[queue.Gamemode]queue.Stored
	upserts int
	tests   []session.Record
}

func New() *Store {
	return &Store{records: make(map[queue.Gamemode]queue.Stored)}
}

func (s *Store) Upsert(_ context.Context, gm queue.Gamemode, q queue.Queue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[gm] = queue.ToStored(q)
	s.upserts++
	return nil
}

func (s *Store) LoadAll(_ context.Context) (map[queue.Gamemode]queue.Stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[queue.Gamemode]queue.Stored, len(s.records))
	for gm, rec := range s.records {
		out[gm] = rec
	}
	return out, nil
}

// Put seeds a raw (possibly partial) record.
func (s *Store) Put(gm queue.Gamemode, rec queue.Stored) {
	s.mu.Lock()
	s.records[gm] = rec
	s.mu.Unlock()
}

// Upserts reports how many writes the store has seen.
func (s *Store) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

func (s *Store) SaveTestRecord(_ context.Context, rec session.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests = append(s.tests, rec)
	return strconv.Itoa(len(s.tests) - 1), nil
}

// TestRecords returns a copy of the saved sessions.
func (s *Store) TestRecords() []session.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.Record(nil), s.tests...)
}
