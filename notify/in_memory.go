package notify

import (
	"sync"

	"github.com/hupe1980/lms/core"
)

// InMemoryStore is a process-local NotificationStore. It offers:
//  1. Append-only storage bounded by a maximum size (0 for unbounded)
//  2. Ordered count/index access for rendering
//  3. Per-receiver inbox and unread queries
//
// Concurrency: protected by RWMutex; the read flag is atomic.
// Inbox: linear scan over all notifications. Suitable for the small, bounded
// working set this store is sized for.
type InMemoryStore struct {
	mu    sync.RWMutex
	items *core.Bounded[*core.Notification]
}

// NewInMemoryStore creates an empty store holding at most max notifications.
func NewInMemoryStore(max int) *InMemoryStore {
	return &InMemoryStore{items: core.NewBounded[*core.Notification](max)}
}

// Append stores n. A full store rejects n with core.ErrCapacityExceeded.
func (s *InMemoryStore) Append(n *core.Notification) error {
	if n == nil || core.IsNil(n.Receiver) {
		return core.NewError("notify", core.KindNotFound, "notification receiver is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.items.Add(n)
}

// Count returns the number of stored notifications.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.Len()
}

// At returns the i-th notification in insertion order. It panics when i is
// outside [0, Count()).
func (s *InMemoryStore) At(i int) *core.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.items.At(i)
}

// Inbox returns the notifications received by u in insertion order. A record
// that only shares u's ID does not match.
func (s *InMemoryStore) Inbox(u core.User) []*core.Notification {
	if core.IsNil(u) {
		return []*core.Notification{}
	}

	return s.filter(func(n *core.Notification) bool { return n.Receiver == u })
}

// Unread returns the unread notifications received by u.
func (s *InMemoryStore) Unread(u core.User) []*core.Notification {
	if core.IsNil(u) {
		return []*core.Notification{}
	}

	return s.filter(func(n *core.Notification) bool { return n.Receiver == u && !n.IsRead() })
}

// Batch returns every notification emitted by the action tagged batchID.
func (s *InMemoryStore) Batch(batchID string) []*core.Notification {
	return s.filter(func(n *core.Notification) bool { return n.BatchID == batchID })
}

func (s *InMemoryStore) filter(keep func(n *core.Notification) bool) []*core.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*core.Notification{}
	for i := 0; i < s.items.Len(); i++ {
		if n := s.items.At(i); keep(n) {
			out = append(out, n)
		}
	}

	return out
}
