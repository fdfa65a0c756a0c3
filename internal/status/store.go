package status

import (
	"sync"
	"time"
)

// Store holds the latest successfully polled snapshot plus the freshness
// inputs derived from it. The poll loop is the only writer; the render and
// freshness ticks read concurrently, so access is guarded by an RWMutex.
type Store struct {
	mu          sync.RWMutex
	latest      *Snapshot
	lastUpdate  *time.Time
	threadAlive bool
}

// NewStore creates an empty store: no snapshot, no freshness data.
func NewStore() *Store {
	return &Store{threadAlive: true}
}

// Set replaces the current snapshot and recomputes the freshness inputs.
// A failed poll never calls Set, so the prior snapshot stays visible.
func (st *Store) Set(snap *Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.latest = snap
	st.lastUpdate = snap.LastUpdate()
	st.threadAlive = snap.ThreadAlive()
}

// Latest returns the most recent snapshot, or nil before the first
// successful poll. Snapshots are immutable once stored.
func (st *Store) Latest() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.latest
}

// Freshness returns the last price-update timestamp (nil if none yet) and
// the price-thread health flag from the latest snapshot.
func (st *Store) Freshness() (*time.Time, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.lastUpdate, st.threadAlive
}
