package inventory

import (
	"testing"
	"time"
)

func TestRegistrySetReplacesPreviousHandle(t *testing.T) {
	r := NewRegistry()

	firstCanceled := false
	r.Set(func() { firstCanceled = true })
	r.Set(func() {})

	if !firstCanceled {
		t.Error("expected replacing the handle to cancel the previous one")
	}
	if !r.Active() {
		t.Error("expected a handle to remain registered")
	}
}

func TestRegistryClearDoesNotInvoke(t *testing.T) {
	r := NewRegistry()

	canceled := false
	r.Set(func() { canceled = true })
	r.Clear()

	if canceled {
		t.Error("Clear must not invoke the handle")
	}
	if r.Active() {
		t.Error("expected slot empty after Clear")
	}
}

func TestRegistryForceClearInvokes(t *testing.T) {
	r := NewRegistry()

	canceled := false
	r.Set(func() { canceled = true })
	r.ForceClear()

	if !canceled {
		t.Error("ForceClear must invoke the handle")
	}
	if r.Active() {
		t.Error("expected slot empty after ForceClear")
	}

	// Idempotent on an empty slot.
	r.ForceClear()
}

func TestFeedBroadcastCoalesces(t *testing.T) {
	f := NewFeed()
	ch, cancel := f.Subscribe()
	defer cancel()

	f.Broadcast()
	f.Broadcast()
	f.Broadcast()

	<-ch
	select {
	case <-ch:
		t.Error("expected pending signals to coalesce into one")
	default:
	}
}

func TestFeedUnsubscribedReceivesNothing(t *testing.T) {
	f := NewFeed()
	ch, cancel := f.Subscribe()
	cancel()

	f.Broadcast()
	select {
	case <-ch:
		t.Error("canceled subscriber must not be signaled")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedBroadcastDoesNotBlock(t *testing.T) {
	f := NewFeed()
	_, cancel := f.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			f.Broadcast()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow subscriber")
	}
}
