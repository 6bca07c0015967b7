// Package store owns the in-session watchlist state: an ordered set of asset
// identifiers, loaded from persistent storage once at startup and written
// back on every mutation.
package store

import (
	"context"
	"log/slog"
	"sync"
)

// Persister abstracts the backing key-value storage for the watchlist.
// Following Go convention: interfaces are defined by the consumer (store), not the provider (adapters).
type Persister interface {
	// Load returns the persisted id list; (nil, nil) when nothing is stored.
	Load(ctx context.Context) ([]string, error)
	// Save replaces the persisted id list with ids.
	Save(ctx context.Context, ids []string) error
}

// Subscriber receives the full id list synchronously after each completed
// mutation, persistence attempt included. Views re-derive their output from
// the snapshot they are handed.
type Subscriber func(ids []string)

// WatchlistStore is the single per-session watchlist instance. Construct it
// once at application start and hand the same instance to every consumer.
//
// Persistence is best effort: when the backing store fails, the in-memory
// state still updates for the current session and the failure is logged, not
// returned. Mutation methods therefore have no error result.
type WatchlistStore struct {
	mu        sync.Mutex
	ids       []string            // insertion order
	index     map[string]struct{} // membership
	persister Persister
	subs      []Subscriber
}

// New loads the persisted watchlist through p and returns the store. An
// absent, malformed or unreadable persisted value degrades to an empty
// watchlist without error.
func New(ctx context.Context, p Persister) *WatchlistStore {
	s := &WatchlistStore{
		persister: p,
		index:     make(map[string]struct{}),
	}
	ids, err := p.Load(ctx)
	if err != nil {
		slog.Warn("watchlist load failed, starting empty", "error", err)
		return s
	}
	for _, id := range ids {
		// 永続値に重複が混入していても読み込み時に落とす
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// IsWatched reports whether id is currently on the watchlist. No side effect.
func (s *WatchlistStore) IsWatched(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// IDs returns a copy of the watchlist in insertion order.
func (s *WatchlistStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of watched ids.
func (s *WatchlistStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Add appends id if absent. Idempotent: adding a present id is a no-op and
// neither persists nor notifies.
func (s *WatchlistStore) Add(ctx context.Context, id string) {
	s.mu.Lock()
	if _, ok := s.index[id]; ok {
		s.mu.Unlock()
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	snapshot, subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Remove deletes id if present. Idempotent like Add.
func (s *WatchlistStore) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	if _, ok := s.index[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	snapshot, subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Toggle removes id if watched, adds it otherwise. The membership check and
// the mutation happen under one lock acquisition, so no caller can observe an
// intermediate state.
func (s *WatchlistStore) Toggle(ctx context.Context, id string) {
	s.mu.Lock()
	if _, ok := s.index[id]; ok {
		delete(s.index, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
	} else {
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	snapshot, subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Clear empties the watchlist.
func (s *WatchlistStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.ids = nil
	s.index = make(map[string]struct{})
	snapshot, subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Subscribe registers fn for synchronous notification after every mutation.
// There is no unsubscribe; subscribers live as long as the store.
func (s *WatchlistStore) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// commitLocked persists the current state (best effort) and returns the
// snapshot plus the subscriber list to notify. Caller must hold s.mu.
func (s *WatchlistStore) commitLocked(ctx context.Context) ([]string, []Subscriber) {
	snapshot := make([]string, len(s.ids))
	copy(snapshot, s.ids)

	if err := s.persister.Save(ctx, snapshot); err != nil {
		// 永続化はベストエフォート。失敗してもセッション内の状態は有効のまま。
		slog.Warn("watchlist persist failed, state is session-only", "error", err)
	}

	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	return snapshot, subs
}

// notify delivers the snapshot outside the store lock so a subscriber may
// call back into the store.
func notify(subs []Subscriber, snapshot []string) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
