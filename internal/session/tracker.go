package session

import "sync"

// Tracker remembers which customers are mid-way through entering a transfer
// amount. It exists only to stop an in-flight amount entry from being read
// as free-text recipient information; it is volatile and never persisted.
//
// Keyed by customer id; only that customer's events mutate the entry, so
// there is no cross-customer contention.
type Tracker struct {
	mu       sync.RWMutex
	awaiting map[int64]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{awaiting: make(map[int64]struct{})}
}

// AwaitAmount marks the customer as owing an amount entry.
func (t *Tracker) AwaitAmount(customerID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.awaiting[customerID] = struct{}{}
}

// AwaitingAmount reports whether an amount entry is pending for the customer.
func (t *Tracker) AwaitingAmount(customerID int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.awaiting[customerID]
	return ok
}

// Clear drops the marker, on completion or cancellation of the amount step.
func (t *Tracker) Clear(customerID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.awaiting, customerID)
}
