package inventory

import "sync"

// Registry is a single-owner slot holding the unsubscribe handle of the
// currently active live subscription. The list view sets and clears its own
// handle; the authentication lifecycle force-clears the slot on sign-out so
// a stale listener cannot keep querying after credentials are revoked.
type Registry struct {
	mu     sync.Mutex
	cancel func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set records the unsubscribe handle of a newly started subscription. An
// existing handle is canceled first, keeping the single-owner invariant.
func (r *Registry) Set(cancel func()) {
	r.mu.Lock()
	prev := r.cancel
	r.cancel = cancel
	r.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// Clear drops the stored handle without invoking it. Called by the owner
// after it has already torn down its own subscription.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.cancel = nil
	r.mu.Unlock()
}

// ForceClear cancels and drops the stored handle, if any. Called by the
// auth lifecycle on sign-out, which may not be the owner of the handle.
func (r *Registry) ForceClear() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Active reports whether a handle is currently registered.
func (r *Registry) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}
