package inventory

import "sync"

// Feed broadcasts record-set change signals to live subscriptions. Writers
// call Broadcast after a committed write; every subscriber gets a coalesced
// wakeup and re-runs its bounded query. Broadcast never blocks.
type Feed struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan struct{})}
}

// Subscribe registers a new subscriber. The returned channel carries
// coalesced change signals; the cancel function removes the subscriber.
func (f *Feed) Subscribe() (<-chan struct{}, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan struct{}, 1)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
	return ch, cancel
}

// Broadcast signals every subscriber. A subscriber with a signal already
// pending is not signaled again; re-querying once covers both writes.
func (f *Feed) Broadcast() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
