package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderCall struct {
	kind  string // open | update | closed
	gm    Gamemode
	q     Queue
	msgID string
}

type fakeNotifier struct {
	mu        sync.Mutex
	calls     []renderCall
	seq       int
	err       error
	updateErr error         // returned by RenderUpdate only
	gate      chan struct{} // when set every render waits for a receive
	hang      bool          // when set every render blocks until its deadline
}

func (n *fakeNotifier) record(ctx context.Context, kind string, gm Gamemode, q Queue, msgID string) error {
	if n.hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if n.gate != nil {
		<-n.gate
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, renderCall{kind: kind, gm: gm, q: q, msgID: msgID})
	return n.err
}

func (n *fakeNotifier) RenderOpen(ctx context.Context, gm Gamemode, q Queue) (string, error) {
	if err := n.record(ctx, "open", gm, q, ""); err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	return fmt.Sprintf("msg-%d", n.seq), nil
}

func (n *fakeNotifier) RenderUpdate(ctx context.Context, gm Gamemode, q Queue, msgID string) error {
	if err := n.record(ctx, "update", gm, q, msgID); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.updateErr
}

func (n *fakeNotifier) RenderClosed(ctx context.Context, gm Gamemode, q Queue, msgID string) error {
	return n.record(ctx, "closed", gm, q, msgID)
}

func (n *fakeNotifier) last(kind string) (renderCall, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.calls) - 1; i >= 0; i-- {
		if n.calls[i].kind == kind {
			return n.calls[i], true
		}
	}
	return renderCall{}, false
}

type fakeStore struct {
	mu      sync.Mutex
	recs    map[Gamemode]Stored
	upserts int
	err     error
	loadErr error
}

func newFakeStore() *fakeStore { return &fakeStore{recs: map[Gamemode]Stored{}} }

func (s *fakeStore) Upsert(ctx context.Context, gm Gamemode, q Queue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.err != nil {
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.recs[gm] = ToStored(q)
	return nil
}

func (s *fakeStore) LoadAll(_ context.Context) (map[Gamemode]Stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := map[Gamemode]Stored{}
	for k, v := range s.recs {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) get(gm Gamemode) (Stored, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.recs[gm]
	return v, ok
}

type staticChannels map[Gamemode]string

func (c staticChannels) ResolveChannel(_ context.Context, gm Gamemode) (string, bool) {
	id, ok := c[gm]
	return id, ok
}

func allChannels() staticChannels {
	c := staticChannels{}
	for _, gm := range Gamemodes() {
		c[gm] = "ch-" + string(gm)
	}
	return c
}

func newTestRegistry(t *testing.T, opts Options) (*Registry, *fakeStore, *fakeNotifier) {
	t.Helper()
	st := newFakeStore()
	n := &fakeNotifier{}
	return NewRegistry(st, n, allChannels(), opts), st, n
}

var ctx = context.Background()

func TestScenario_OpenJoinPull(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())

	q, err := r.Open(ctx, Sword, "T1", "NA")
	require.NoError(t, err)
	assert.True(t, q.IsOpen)
	assert.Equal(t, []string{"T1"}, q.ActiveTesters)
	assert.Equal(t, "ch-sword", q.ChannelID)

	pos, err := r.Join(ctx, Sword, "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	pos, err = r.Join(ctx, Sword, "P2")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	got, err := r.Pull(ctx, Sword, "T1")
	require.NoError(t, err)
	assert.Equal(t, "P1", got)

	q, _ = r.Get(Sword)
	assert.Equal(t, []string{"P2"}, q.Players)
	r.Wait()
}

func TestJoin_OpenerCannotJoinOwnQueue(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())
	_, err := r.Open(ctx, Sword, "T1", "NA")
	require.NoError(t, err)

	_, err = r.Join(ctx, Sword, "T1")
	assert.ErrorIs(t, err, ErrSelfJoin)

	q, _ := r.Get(Sword)
	assert.Empty(t, q.Players)
	r.Wait()
}

func TestJoin_Rejections(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())

	_, err := r.Join(ctx, Gamemode("bedwars"), "P1")
	assert.ErrorIs(t, err, ErrQueueNotFound)

	_, err = r.Join(ctx, Axe, "P1")
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, err = r.Open(ctx, Axe, "T1", "EU")
	require.NoError(t, err)
	_, err = r.Join(ctx, Axe, "P1")
	require.NoError(t, err)
	_, err = r.Join(ctx, Axe, "P1")
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	assert.ErrorIs(t, r.Leave(ctx, Axe, "P9"), ErrNotQueued)
	assert.ErrorIs(t, r.Leave(ctx, Gamemode("nope"), "P1"), ErrQueueNotFound)
	r.Wait()
}

func TestClose_RendersFirstPlayer(t *testing.T) {
	r, st, n := newTestRegistry(t, DefaultOptions())
	_, err := r.Open(ctx, Sword, "T1", "NA")
	require.NoError(t, err)
	r.Wait()
	_, _ = r.Join(ctx, Sword, "P1")
	_, _ = r.Join(ctx, Sword, "P2")
	_, err = r.Pull(ctx, Sword, "T1")
	require.NoError(t, err)

	q, err := r.Close(ctx, Sword, "T1", "done")
	require.NoError(t, err)
	assert.False(t, q.IsOpen)
	assert.Equal(t, "T1", q.ClosedBy)
	assert.Equal(t, "done", q.CloseReason)
	require.NotNil(t, q.ClosedAt)
	r.Wait()

	call, ok := n.last("closed")
	require.True(t, ok, "renderClosed not invoked")
	first, ok := call.q.FirstPlayer()
	require.True(t, ok)
	assert.Equal(t, "P2", first)
	assert.Equal(t, "msg-1", call.msgID)

	rec, ok := st.get(Sword)
	require.True(t, ok)
	require.NotNil(t, rec.IsOpen)
	assert.False(t, *rec.IsOpen)
}

func TestClose_AlreadyClosedDoesNotMutate(t *testing.T) {
	r, st, n := newTestRegistry(t, DefaultOptions())
	before, _ := r.Get(Mace)

	_, err := r.Close(ctx, Mace, "T1", "x")
	assert.ErrorIs(t, err, ErrAlreadyClosed)
	r.Wait()

	after, _ := r.Get(Mace)
	assert.Equal(t, before, after)
	assert.Zero(t, st.upserts)
	assert.Empty(t, n.calls)
}

func TestClose_DefaultReason(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, UHC, "T1", "EU")
	q, err := r.Close(ctx, UHC, "T1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultCloseReason, q.CloseReason)
	r.Wait()
}

func TestCloseAll_ClosesOnlyOpenQueues(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, Sword, "T1", "NA")
	_, _ = r.Open(ctx, Crystal, "T2", "EU")

	assert.Equal(t, 2, r.CloseAll(ctx, "owner", "maintenance"))
	for gm, q := range r.Snapshot() {
		assert.False(t, q.IsOpen, gm)
	}
	assert.Equal(t, 0, r.CloseAll(ctx, "owner", ""))
	r.Wait()
}

func TestOpen_ChannelNotFoundLeavesQueueUntouched(t *testing.T) {
	st := newFakeStore()
	r := NewRegistry(st, &fakeNotifier{}, staticChannels{}, DefaultOptions())

	_, err := r.Open(ctx, Sword, "T1", "NA")
	assert.ErrorIs(t, err, ErrChannelNotFound)
	q, _ := r.Get(Sword)
	assert.False(t, q.IsOpen)
	assert.Empty(t, q.OpenedBy)
	r.Wait()
	assert.Zero(t, st.upserts)
}

func TestOpen_ReopenPolicy(t *testing.T) {
	t.Run("re-arm", func(t *testing.T) {
		r, _, _ := newTestRegistry(t, DefaultOptions())
		_, _ = r.Open(ctx, Sword, "T1", "NA")
		_, _ = r.Join(ctx, Sword, "P1")

		q, err := r.Open(ctx, Sword, "T2", "EU")
		require.NoError(t, err)
		assert.Empty(t, q.Players)
		assert.Equal(t, []string{"T2"}, q.ActiveTesters)
		assert.Equal(t, "EU", q.Region)
		r.Wait()
	})

	t.Run("reject", func(t *testing.T) {
		opts := DefaultOptions()
		opts.AllowReopen = false
		r, _, _ := newTestRegistry(t, opts)
		_, _ = r.Open(ctx, Sword, "T1", "NA")
		_, _ = r.Join(ctx, Sword, "P1")

		_, err := r.Open(ctx, Sword, "T2", "EU")
		assert.ErrorIs(t, err, ErrAlreadyOpen)
		q, _ := r.Get(Sword)
		assert.Equal(t, []string{"P1"}, q.Players)
		r.Wait()
	})
}

func TestOpen_ClearsCloseMetadata(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, Sword, "T1", "NA")
	_, _ = r.Close(ctx, Sword, "T1", "break")

	q, err := r.Open(ctx, Sword, "T1", "NA")
	require.NoError(t, err)
	assert.Empty(t, q.ClosedBy)
	assert.Nil(t, q.ClosedAt)
	assert.Empty(t, q.CloseReason)
	r.Wait()
}

func TestOpen_BindsDisplayMessage(t *testing.T) {
	r, _, n := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, Sword, "T1", "NA")
	r.Wait()

	q, _ := r.Get(Sword)
	assert.Equal(t, "msg-1", q.MessageID)

	_, _ = r.Join(ctx, Sword, "P1")
	r.Wait()
	call, ok := n.last("update")
	require.True(t, ok)
	assert.Equal(t, "msg-1", call.msgID)
	assert.Equal(t, []string{"P1"}, call.q.Players)
}

func TestPull_Rejections(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())
	_, err := r.Pull(ctx, Sword, "T1")
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, _ = r.Open(ctx, Sword, "T1", "NA")
	_, err = r.Pull(ctx, Sword, "T1")
	assert.ErrorIs(t, err, ErrQueueEmpty)

	_, err = r.Pull(ctx, Gamemode("x"), "T1")
	assert.ErrorIs(t, err, ErrQueueNotFound)
	r.Wait()
}

func TestJoinAsTester(t *testing.T) {
	r, _, n := newTestRegistry(t, DefaultOptions())
	assert.ErrorIs(t, r.JoinAsTester(ctx, Sword, "T2"), ErrQueueClosed)

	_, _ = r.Open(ctx, Sword, "T1", "NA")
	r.Wait()
	require.NoError(t, r.JoinAsTester(ctx, Sword, "T2"))
	assert.ErrorIs(t, r.JoinAsTester(ctx, Sword, "T2"), ErrAlreadyTester)
	assert.ErrorIs(t, r.JoinAsTester(ctx, Sword, "T1"), ErrAlreadyTester)

	q, _ := r.Get(Sword)
	assert.Equal(t, []string{"T1", "T2"}, q.ActiveTesters)
	r.Wait()

	call, ok := n.last("update")
	require.True(t, ok)
	assert.Equal(t, []string{"T1", "T2"}, call.q.ActiveTesters)
}

// Random join/leave/pull sequences checked against a plain slice model.
func TestJoinLeavePull_MatchesFIFOModel(t *testing.T) {
	r, _, _ := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, SMP, "T1", "NA")
	rng := rand.New(rand.NewSource(42))

	var model []string
	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("P%d", rng.Intn(12))
		switch rng.Intn(3) {
		case 0:
			pos, err := r.Join(ctx, SMP, id)
			if indexOf(model, id) >= 0 {
				assert.ErrorIs(t, err, ErrAlreadyQueued)
				continue
			}
			require.NoError(t, err)
			model = append(model, id)
			assert.Equal(t, len(model), pos)
		case 1:
			err := r.Leave(ctx, SMP, id)
			j := indexOf(model, id)
			if j < 0 {
				assert.ErrorIs(t, err, ErrNotQueued)
				continue
			}
			require.NoError(t, err)
			model = append(model[:j], model[j+1:]...)
		case 2:
			got, err := r.Pull(ctx, SMP, "T1")
			if len(model) == 0 {
				assert.ErrorIs(t, err, ErrQueueEmpty)
				continue
			}
			require.NoError(t, err)
			assert.Equal(t, model[0], got)
			model = model[1:]
		}
		q, _ := r.Get(SMP)
		require.Equal(t, len(model), len(q.Players))
		if len(model) > 0 {
			require.Equal(t, model, q.Players)
		}
	}
	r.Wait()
}

func TestConcurrentJoins_SlowNotifierKeepsBoth(t *testing.T) {
	r, st, n := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, Sword, "T1", "NA")
	r.Wait()

	n.gate = make(chan struct{})
	_, err := r.Join(ctx, Sword, "P1")
	require.NoError(t, err)
	_, err = r.Join(ctx, Sword, "P2")
	require.NoError(t, err)

	// release renders one by one while both joins are in flight
	go func() {
		for i := 0; i < 2; i++ {
			select {
			case n.gate <- struct{}{}:
			case <-time.After(200 * time.Millisecond):
			}
		}
	}()
	r.Wait()

	q, _ := r.Get(Sword)
	assert.Equal(t, []string{"P1", "P2"}, q.Players)

	rec, ok := st.get(Sword)
	require.True(t, ok)
	assert.Equal(t, []string{"P1", "P2"}, rec.Players)

	call, ok := n.last("update")
	require.True(t, ok)
	assert.Equal(t, []string{"P1", "P2"}, call.q.Players)
}

func invariant(t *testing.T, snap map[Gamemode]Queue) {
	t.Helper()
	for gm, q := range snap {
		seen := map[string]bool{}
		for _, p := range q.Players {
			if seen[p] {
				t.Fatalf("%s: duplicate player %s", gm, p)
			}
			if p == q.OpenedBy {
				t.Fatalf("%s: opener %s queued in own queue", gm, p)
			}
			seen[p] = true
		}
		if q.IsOpen && indexOf(q.ActiveTesters, q.OpenedBy) < 0 {
			t.Fatalf("%s: opener missing from active testers", gm)
		}
	}
}

func TestRaceRandomOps(t *testing.T) {
	r, st, _ := newTestRegistry(t, DefaultOptions())
	for _, gm := range Gamemodes() {
		_, _ = r.Open(ctx, gm, "T", "NA")
	}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			modes := Gamemodes()
			for j := 0; j < 200; j++ {
				gm := modes[rng.Intn(len(modes))]
				id := "P" + string(rune('A'+rng.Intn(26)))
				switch rng.Intn(4) {
				case 0, 1:
					_, _ = r.Join(ctx, gm, id)
				case 2:
					_ = r.Leave(ctx, gm, id)
				default:
					_, _ = r.Pull(ctx, gm, "T")
				}
			}
		}(int64(g))
	}
	wg.Wait()
	r.Wait()

	snap := r.Snapshot()
	invariant(t, snap)
	for gm, q := range snap {
		rec, ok := st.get(gm)
		require.True(t, ok, gm)
		assert.Equal(t, q.Players, rec.Players, gm)
		require.NotNil(t, rec.MessageID, gm)
		assert.Equal(t, q.MessageID, *rec.MessageID, gm)
	}
}

func TestPropagationFailuresDoNotRollBack(t *testing.T) {
	st := newFakeStore()
	st.err = errors.New("store down")
	n := &fakeNotifier{err: errors.New("discord down")}
	r := NewRegistry(st, n, allChannels(), DefaultOptions())

	_, err := r.Open(ctx, Crystal, "T1", "AS")
	require.NoError(t, err)
	_, err = r.Join(ctx, Crystal, "P1")
	require.NoError(t, err)
	r.Wait()

	q, _ := r.Get(Crystal)
	assert.True(t, q.IsOpen)
	assert.Equal(t, []string{"P1"}, q.Players)
	assert.Empty(t, q.MessageID)
}

func TestOps_PersistBeforeReturning(t *testing.T) {
	opts := DefaultOptions()
	opts.PropagationTimeout = 50 * time.Millisecond
	r, st, n := newTestRegistry(t, opts)
	n.hang = true

	_, err := r.Open(ctx, Sword, "T1", "NA")
	require.NoError(t, err)
	rec, ok := st.get(Sword)
	require.True(t, ok)
	require.NotNil(t, rec.IsOpen)
	assert.True(t, *rec.IsOpen)

	// the caller giving up does not cancel the write
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Join(cctx, Sword, "P1")
	require.NoError(t, err)
	rec, _ = st.get(Sword)
	assert.Equal(t, []string{"P1"}, rec.Players)

	r.Wait()
	rec, _ = st.get(Sword)
	assert.Equal(t, []string{"P1"}, rec.Players)
	q, _ := r.Get(Sword)
	assert.Empty(t, q.MessageID)
}

func TestJoin_PersistedWhileRenderPending(t *testing.T) {
	r, st, n := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, Sword, "T1", "NA")
	r.Wait()

	n.gate = make(chan struct{})
	_, err := r.Join(ctx, Sword, "P1")
	require.NoError(t, err)

	rec, ok := st.get(Sword)
	require.True(t, ok)
	assert.Equal(t, []string{"P1"}, rec.Players)
	require.NotNil(t, rec.MessageID)
	assert.Equal(t, "msg-1", *rec.MessageID)

	close(n.gate)
	r.Wait()
}

func TestNotifierFailureStillPersists(t *testing.T) {
	r, st, n := newTestRegistry(t, DefaultOptions())
	n.err = errors.New("discord down")

	_, err := r.Open(ctx, Mace, "T1", "EU")
	require.NoError(t, err)
	_, err = r.Join(ctx, Mace, "P1")
	require.NoError(t, err)
	r.Wait()

	rec, ok := st.get(Mace)
	require.True(t, ok)
	require.NotNil(t, rec.IsOpen)
	assert.True(t, *rec.IsOpen)
	assert.Equal(t, []string{"P1"}, rec.Players)
	require.NotNil(t, rec.MessageID)
	assert.Empty(t, *rec.MessageID)
}

func TestOpen_PersistsBoundMessage(t *testing.T) {
	r, st, _ := newTestRegistry(t, DefaultOptions())
	_, err := r.Open(ctx, UHC, "T1", "NA")
	require.NoError(t, err)
	r.Wait()

	rec, ok := st.get(UHC)
	require.True(t, ok)
	require.NotNil(t, rec.MessageID)
	assert.Equal(t, "msg-1", *rec.MessageID)
}

func TestDisplayGone_PostsFreshDisplay(t *testing.T) {
	r, st, n := newTestRegistry(t, DefaultOptions())
	_, _ = r.Open(ctx, Sword, "T1", "NA")
	r.Wait()

	n.mu.Lock()
	n.updateErr = fmt.Errorf("edit: %w", ErrDisplayGone)
	n.mu.Unlock()

	_, err := r.Join(ctx, Sword, "P1")
	require.NoError(t, err)
	r.Wait()

	call, ok := n.last("open")
	require.True(t, ok)
	assert.Equal(t, []string{"P1"}, call.q.Players)
	assert.Empty(t, call.q.MessageID)

	q, _ := r.Get(Sword)
	assert.Equal(t, "msg-2", q.MessageID)
	rec, _ := st.get(Sword)
	require.NotNil(t, rec.MessageID)
	assert.Equal(t, "msg-2", *rec.MessageID)

	n.mu.Lock()
	n.updateErr = nil
	n.mu.Unlock()
	_, _ = r.Join(ctx, Sword, "P2")
	r.Wait()
	call, ok = n.last("update")
	require.True(t, ok)
	assert.Equal(t, "msg-2", call.msgID)
}

func TestRehydrate_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	opts := DefaultOptions()
	opts.Now = func() time.Time { return at }

	r1, st, _ := newTestRegistry(t, opts)
	_, _ = r1.Open(ctx, Sword, "T1", "NA")
	_, _ = r1.Join(ctx, Sword, "P1")
	_, _ = r1.Join(ctx, Sword, "P2")
	_ = r1.JoinAsTester(ctx, Sword, "T2")
	_, _ = r1.Open(ctx, Axe, "T3", "EU")
	_, _ = r1.Close(ctx, Axe, "T3", "bye")
	assert.Zero(t, r1.PersistAll(ctx))

	r2 := NewRegistry(st, &fakeNotifier{}, allChannels(), opts)
	n, err := r2.Rehydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(Gamemodes()), n)

	for _, gm := range Gamemodes() {
		want, _ := r1.Get(gm)
		got, _ := r2.Get(gm)
		assert.Equal(t, want.IsOpen, got.IsOpen, gm)
		assert.Equal(t, want.Players, got.Players, gm)
		assert.Equal(t, want.ActiveTesters, got.ActiveTesters, gm)
		assert.Equal(t, want.Region, got.Region, gm)
		assert.Equal(t, want.MessageID, got.MessageID, gm)
		if want.OpenedAt != nil {
			require.NotNil(t, got.OpenedAt)
			assert.True(t, want.OpenedAt.Equal(*got.OpenedAt))
		}
	}
	axe, _ := r2.Get(Axe)
	assert.Equal(t, "bye", axe.CloseReason)
	require.NotNil(t, axe.ClosedAt)
	assert.True(t, at.Equal(*axe.ClosedAt))
}

func TestRehydrate_PartialRecordGetsDefaults(t *testing.T) {
	st := newFakeStore()
	open := true
	opener := "T1"
	st.recs[Sword] = Stored{IsOpen: &open, OpenedBy: &opener, Players: []string{"P1", "T1", "P1", "P2"}}
	st.recs[Gamemode("bedwars")] = Stored{IsOpen: &open}

	n := &fakeNotifier{}
	r := NewRegistry(st, n, allChannels(), DefaultOptions())
	count, err := r.Rehydrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	q, _ := r.Get(Sword)
	assert.True(t, q.IsOpen)
	assert.Equal(t, []string{"P1", "P2"}, q.Players)
	assert.Equal(t, []string{"T1"}, q.ActiveTesters)
	assert.Nil(t, q.OpenedAt)
	assert.Empty(t, q.Region)

	other, _ := r.Get(Crystal)
	assert.False(t, other.IsOpen)

	// no display bound yet: the next change posts a fresh one
	_, err = r.Join(ctx, Sword, "P3")
	require.NoError(t, err)
	r.Wait()
	_, ok := n.last("open")
	assert.True(t, ok)
	q, _ = r.Get(Sword)
	assert.Equal(t, "msg-1", q.MessageID)
}

func TestRehydrate_LoadFailureKeepsDefaults(t *testing.T) {
	st := newFakeStore()
	st.loadErr = errors.New("timeout")
	r := NewRegistry(st, &fakeNotifier{}, allChannels(), DefaultOptions())

	_, err := r.Rehydrate(ctx)
	assert.Error(t, err)
	for _, q := range r.Snapshot() {
		assert.False(t, q.IsOpen)
		assert.Empty(t, q.Players)
	}
}

func TestPersistAll_CountsFailures(t *testing.T) {
	r, st, _ := newTestRegistry(t, DefaultOptions())
	st.err = errors.New("nope")
	assert.Equal(t, len(Gamemodes()), r.PersistAll(ctx))
}

func TestParseGamemode(t *testing.T) {
	g, err := ParseGamemode(" Sword ")
	require.NoError(t, err)
	assert.Equal(t, Sword, g)
	assert.Equal(t, "Sword", g.Title())

	_, err = ParseGamemode("bedwars")
	assert.ErrorIs(t, err, ErrQueueNotFound)
}
