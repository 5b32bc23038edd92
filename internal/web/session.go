package web

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

// deliveryWait bounds how long a page handler waits for the live
// subscription to deliver after a transition before rendering whatever
// state the pager has.
const deliveryWait = 2 * time.Second

// session is the live pagination state of one signed-in session. It lives
// no longer than the token that opened it: expiry makes the session
// eligible for reaping even when the user never signs out.
type session struct {
	pager     *inventory.Pager
	registry  *inventory.Registry
	delivered chan struct{}
	expires   time.Time

	mu      sync.Mutex
	started bool
}

// begin reports whether the session still needs its initial query, flipping
// the flag on first call.
func (sess *session) begin() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.started {
		return false
	}
	sess.started = true
	return true
}

// drain discards any stale delivery signal so a wait after the next
// transition observes only that transition's delivery.
func (sess *session) drain() {
	select {
	case <-sess.delivered:
	default:
	}
}

// wait blocks until the pager delivers or the wait budget runs out.
func (sess *session) wait() {
	select {
	case <-sess.delivered:
	case <-time.After(deliveryWait):
	}
}

// session returns the live pagination state for the given session key,
// creating it on first use. Sessions whose tokens have lapsed are reaped
// first, so abandoned logins cannot accumulate live subscriptions.
func (s *Server) session(jti string, expires time.Time) *session {
	s.reapExpired()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions == nil {
		s.sessions = make(map[string]*session)
	}
	if sess, ok := s.sessions[jti]; ok {
		return sess
	}

	sess := &session{
		registry:  inventory.NewRegistry(),
		delivered: make(chan struct{}, 1),
		expires:   expires,
	}
	sess.pager = inventory.NewPager(
		sessionQuerier{db: s.DB, jti: jti, expires: expires},
		s.Feed,
		sess.registry,
		inventory.DefaultPerPage,
	)
	sess.pager.Authed = func() bool { return s.hasSession(jti) }
	sess.pager.OnDeliver = func() {
		select {
		case sess.delivered <- struct{}{}:
		default:
		}
	}

	s.sessions[jti] = sess
	return sess
}

func (s *Server) hasSession(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[jti]
	return ok
}

// reapExpired tears down every session whose token has lapsed. Teardown
// happens outside the lock: the pager goroutine may be blocked on the
// session map itself (through Authed) and stopping it waits that out.
func (s *Server) reapExpired() {
	now := time.Now()

	s.mu.Lock()
	var dead []*session
	for jti, sess := range s.sessions {
		if !sess.expires.IsZero() && now.After(sess.expires) {
			dead = append(dead, sess)
			delete(s.sessions, jti)
		}
	}
	s.mu.Unlock()

	for _, sess := range dead {
		sess.registry.ForceClear()
		sess.pager.Stop()
	}
}

// DropSession force-clears and tears down the pagination state of a
// signed-out session. Safe to call for sessions that never paginated.
func (s *Server) DropSession(jti string) {
	s.mu.Lock()
	sess, ok := s.sessions[jti]
	delete(s.sessions, jti)
	s.mu.Unlock()

	if !ok {
		return
	}
	// Force-clear cancels whatever subscription is live, then the pager
	// teardown waits it out and releases the registry slot.
	sess.registry.ForceClear()
	sess.pager.Stop()
}

// sessionQuerier runs the pager's bounded queries on behalf of one session.
// A revoked or expired session token turns every query into a permission
// error, which mirrors how a backend rejects a live listener once its
// credentials stop being valid.
type sessionQuerier struct {
	db      *sql.DB
	jti     string
	expires time.Time
}

func (q sessionQuerier) check(ctx context.Context) error {
	if !q.expires.IsZero() && time.Now().After(q.expires) {
		return inventory.ErrPermission
	}
	revoked, err := store.IsTokenRevoked(ctx, q.db, q.jti)
	if err != nil {
		return err
	}
	if revoked {
		return inventory.ErrPermission
	}
	return nil
}

func (q sessionQuerier) PageInitial(ctx context.Context, limit int) ([]model.Record, error) {
	if err := q.check(ctx); err != nil {
		return nil, err
	}
	return store.RecordQuerier{DB: q.db}.PageInitial(ctx, limit)
}

func (q sessionQuerier) PageAfter(ctx context.Context, after inventory.Cursor, limit int) ([]model.Record, error) {
	if err := q.check(ctx); err != nil {
		return nil, err
	}
	return store.RecordQuerier{DB: q.db}.PageAfter(ctx, after, limit)
}

func (q sessionQuerier) PageBefore(ctx context.Context, before inventory.Cursor, limit int) ([]model.Record, error) {
	if err := q.check(ctx); err != nil {
		return nil, err
	}
	return store.RecordQuerier{DB: q.db}.PageBefore(ctx, before, limit)
}

func (q sessionQuerier) Count(ctx context.Context) (int, error) {
	if err := q.check(ctx); err != nil {
		return 0, err
	}
	return store.RecordQuerier{DB: q.db}.Count(ctx)
}
