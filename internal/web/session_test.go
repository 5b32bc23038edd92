package web

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tilestock/tilestock/internal/db"
	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/store"
)

func farExpiry() time.Time {
	return time.Now().Add(time.Hour)
}

func TestSessionQuerierMapsRevocationToPermission(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	q := sessionQuerier{db: database, jti: "session-1", expires: farExpiry()}

	// Valid session: queries pass through.
	if _, err := q.PageInitial(ctx, 10); err != nil {
		t.Fatalf("PageInitial with live session: %v", err)
	}
	if _, err := q.Count(ctx); err != nil {
		t.Fatalf("Count with live session: %v", err)
	}

	// Revoked session: every query becomes a permission error.
	if err := store.RevokeToken(ctx, database, "session-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	if _, err := q.PageInitial(ctx, 10); !errors.Is(err, inventory.ErrPermission) {
		t.Errorf("expected permission error after revocation, got %v", err)
	}
	if _, err := q.Count(ctx); !errors.Is(err, inventory.ErrPermission) {
		t.Errorf("expected permission error from Count, got %v", err)
	}
}

func TestSessionQuerierMapsExpiryToPermission(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// An expired but never-revoked token must not keep querying.
	q := sessionQuerier{db: database, jti: "session-2", expires: time.Now().Add(-time.Minute)}

	if _, err := q.PageInitial(ctx, 10); !errors.Is(err, inventory.ErrPermission) {
		t.Errorf("expected permission error for expired session, got %v", err)
	}
	if _, err := q.Count(ctx); !errors.Is(err, inventory.ErrPermission) {
		t.Errorf("expected permission error from Count, got %v", err)
	}
}

func TestSessionReuse(t *testing.T) {
	database := db.NewTestDB(t)
	s := &Server{DB: database, Feed: inventory.NewFeed()}

	a := s.session("jti-a", farExpiry())
	if got := s.session("jti-a", farExpiry()); got != a {
		t.Error("expected the same session for the same key")
	}
	if got := s.session("jti-b", farExpiry()); got == a {
		t.Error("expected a distinct session for a different key")
	}
}

func TestDropSessionTearsDownPager(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	if _, err := store.SaveGroup(ctx, database, "100", 10, 10,
		[]store.VariantInput{{TypeSuffix: "", Quantity: 1}}); err != nil {
		t.Fatalf("seeding record: %v", err)
	}

	s := &Server{DB: database, Feed: inventory.NewFeed()}
	sess := s.session("jti-1", farExpiry())

	sess.drain()
	sess.pager.GoToPage(inventory.DirInitial)
	sess.wait()

	if snap := sess.pager.Snapshot(); len(snap.Records) != 1 {
		t.Fatalf("expected 1 record delivered, got %d", len(snap.Records))
	}
	if !sess.registry.Active() {
		t.Fatal("expected an active registry slot while subscribed")
	}

	s.DropSession("jti-1")

	if sess.registry.Active() {
		t.Error("expected registry slot released after drop")
	}
	if s.hasSession("jti-1") {
		t.Error("expected session removed after drop")
	}

	// Dropping an unknown session is a no-op.
	s.DropSession("never-seen")
}

func TestExpiredSessionsReaped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	if _, err := store.SaveGroup(ctx, database, "100", 10, 10,
		[]store.VariantInput{{TypeSuffix: "", Quantity: 1}}); err != nil {
		t.Fatalf("seeding record: %v", err)
	}

	s := &Server{DB: database, Feed: inventory.NewFeed()}

	// An abandoned session: its token has already lapsed and nobody will
	// ever sign it out.
	abandoned := s.session("jti-old", time.Now().Add(-time.Minute))
	abandoned.drain()
	abandoned.pager.GoToPage(inventory.DirInitial)
	abandoned.wait()
	if !abandoned.registry.Active() {
		t.Fatal("expected an active registry slot while subscribed")
	}

	// Any later session access sweeps the lapsed one out.
	s.session("jti-new", farExpiry())

	if s.hasSession("jti-old") {
		t.Error("expected the lapsed session to be removed")
	}
	if abandoned.registry.Active() {
		t.Error("expected the lapsed session's subscription torn down")
	}
	if !s.hasSession("jti-new") {
		t.Error("expected the live session to survive the sweep")
	}

	// The reaped pager no longer reacts to writes.
	abandoned.drain()
	s.Feed.Broadcast()
	select {
	case <-abandoned.delivered:
		t.Error("expected no delivery after the session was reaped")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSessionAuthedTracksMembership(t *testing.T) {
	database := db.NewTestDB(t)
	s := &Server{DB: database, Feed: inventory.NewFeed()}

	sess := s.session("jti-x", farExpiry())
	if !sess.pager.Authed() {
		t.Error("expected Authed while the session is registered")
	}

	s.DropSession("jti-x")
	if sess.pager.Authed() {
		t.Error("expected Authed false after the session is dropped")
	}
}
