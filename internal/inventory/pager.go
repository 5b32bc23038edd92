package inventory

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tilestock/tilestock/internal/model"
)

// Direction selects which boundary a page transition applies to its query.
type Direction int

const (
	DirInitial Direction = iota
	DirNext
	DirPrev
)

// PerPageChoices is the fixed menu of page sizes.
var PerPageChoices = []int{10, 25, 50}

// DefaultPerPage is the page size used when none is chosen.
const DefaultPerPage = 10

// ErrPermission marks a query rejected because the caller's credentials
// are no longer valid. During an active session this is almost always a
// race with an in-flight logout, so the pager suppresses it from the
// user-facing error state.
var ErrPermission = errors.New("permission denied")

// Querier issues the bounded record queries a pager needs. Results are
// always in descending (created_at, id) order.
type Querier interface {
	PageInitial(ctx context.Context, limit int) ([]model.Record, error)
	PageAfter(ctx context.Context, after Cursor, limit int) ([]model.Record, error)
	PageBefore(ctx context.Context, before Cursor, limit int) ([]model.Record, error)
	Count(ctx context.Context) (int, error)
}

// Snapshot is an immutable view of the pager's state for rendering.
type Snapshot struct {
	Records     []model.Record
	Page        int
	PerPage     int
	Total       int
	TotalKnown  bool
	IsFirstPage bool
	IsLastPage  bool
	Loading     bool
	Err         string
}

// Pager maintains forward/backward pagination state over a live record
// query. Each page transition tears down the previous subscription, issues
// one bounded query, and keeps re-issuing it on every change-feed signal
// until the next transition. At most one subscription is live per pager.
type Pager struct {
	querier  Querier
	feed     *Feed
	registry *Registry

	// Authed reports whether a signed-in user context is still present.
	// Used to classify permission failures as logout races.
	Authed func() bool

	// OnDeliver, when set, runs after every reconciled delivery.
	OnDeliver func()

	mu         sync.Mutex
	perPage    int
	page       int
	cursors    []*Cursor // cursors[p] is the first-record handle of page p; slot 0 is the empty initial slot
	first      *Cursor
	last       *Cursor
	direction  Direction
	records    []model.Record
	lastBatch  int
	total      int
	totalKnown bool
	loading    bool
	errMsg     string
	sub        *subscription
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// stop cancels the subscription and waits for its goroutine to exit, so no
// delivery from the old stream can land after stop returns.
func (s *subscription) stop() {
	s.cancel()
	<-s.done
}

// NewPager creates a pager over the given querier and change feed. The
// registry receives the unsubscribe handle of each live subscription.
func NewPager(q Querier, feed *Feed, registry *Registry, perPage int) *Pager {
	if !validPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return &Pager{
		querier:  q,
		feed:     feed,
		registry: registry,
		perPage:  perPage,
		page:     1,
		cursors:  []*Cursor{nil},
	}
}

func validPerPage(n int) bool {
	for _, c := range PerPageChoices {
		if n == c {
			return true
		}
	}
	return false
}

// GoToPage performs a page transition. Next requires a known last-visible
// handle and prev the stored cursor for the target boundary; when either is
// missing the transition degrades to an initial query of page 1.
func (p *Pager) GoToPage(dir Direction) {
	p.mu.Lock()

	var boundary *Cursor
	switch dir {
	case DirNext:
		if p.last == nil {
			dir = DirInitial
		} else {
			boundary = p.last
			p.page++
		}
	case DirPrev:
		if p.page <= 1 {
			p.mu.Unlock()
			return
		}
		// The first-record handle of the page being left bounds the
		// previous page from below.
		if c := p.cursorFor(p.page); c != nil {
			boundary = c
			p.page--
		} else {
			dir = DirInitial
		}
	}

	if dir == DirInitial {
		p.page = 1
		p.cursors = []*Cursor{nil}
		boundary = nil
	}

	p.direction = dir
	p.loading = true
	p.errMsg = ""
	p.restartLocked(dir, boundary)
	p.mu.Unlock()
}

// SetPerPage changes the page size and resets to page 1 with an initial
// query, clearing all cursor bookkeeping. Sizes outside the fixed menu are
// ignored.
func (p *Pager) SetPerPage(n int) {
	if !validPerPage(n) {
		return
	}

	p.mu.Lock()
	if n == p.perPage {
		p.mu.Unlock()
		return
	}
	p.perPage = n
	p.mu.Unlock()

	p.GoToPage(DirInitial)
}

// RefreshTotal fetches the advisory total record count. Failures are
// swallowed: the total never blocks or fails the page-bound query path.
func (p *Pager) RefreshTotal(ctx context.Context) {
	n, err := p.querier.Count(ctx)
	if err != nil {
		slog.Debug("record count failed", "error", err)
		return
	}

	p.mu.Lock()
	p.total = n
	p.totalKnown = true
	p.mu.Unlock()
}

// Stop tears down the live subscription and releases the registry slot.
func (p *Pager) Stop() {
	p.mu.Lock()
	old := p.sub
	p.sub = nil
	p.mu.Unlock()

	if old != nil {
		old.stop()
	}
	p.registry.Clear()
}

// Snapshot returns the current pagination state.
func (p *Pager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	records := make([]model.Record, len(p.records))
	copy(records, p.records)

	return Snapshot{
		Records:     records,
		Page:        p.page,
		PerPage:     p.perPage,
		Total:       p.total,
		TotalKnown:  p.totalKnown,
		IsFirstPage: p.page == 1,
		IsLastPage: p.lastBatch < p.perPage ||
			(p.totalKnown && p.page*p.perPage >= p.total),
		Loading: p.loading,
		Err:     p.errMsg,
	}
}

// cursorFor returns the stored first-record handle for the given page, or
// nil when the page has not been visited.
func (p *Pager) cursorFor(page int) *Cursor {
	if page < 0 || page >= len(p.cursors) {
		return nil
	}
	return p.cursors[page]
}

func (p *Pager) setCursor(page int, c *Cursor) {
	for len(p.cursors) <= page {
		p.cursors = append(p.cursors, nil)
	}
	p.cursors[page] = c
}

// restartLocked tears down the current subscription, then starts a new one
// for the given query. Teardown completes before the new query is issued,
// so two deliveries can never race for the same state. Callers hold p.mu.
func (p *Pager) restartLocked(dir Direction, boundary *Cursor) {
	if old := p.sub; old != nil {
		p.sub = nil
		p.mu.Unlock()
		old.stop()
		p.mu.Lock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	p.sub = sub
	p.registry.Set(cancel)

	go p.run(ctx, sub, dir, boundary, p.perPage)
}

// run is the subscription loop: query, deliver, wait for a change signal,
// repeat until canceled.
func (p *Pager) run(ctx context.Context, sub *subscription, dir Direction, boundary *Cursor, limit int) {
	defer close(sub.done)

	signals, unsubscribe := p.feed.Subscribe()
	defer unsubscribe()

	for {
		records, err := p.fetch(ctx, dir, boundary, limit)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.deliverError(sub, err)
		} else {
			p.deliver(sub, records)
		}

		select {
		case <-ctx.Done():
			return
		case <-signals:
		}
	}
}

func (p *Pager) fetch(ctx context.Context, dir Direction, boundary *Cursor, limit int) ([]model.Record, error) {
	switch dir {
	case DirNext:
		return p.querier.PageAfter(ctx, *boundary, limit)
	case DirPrev:
		return p.querier.PageBefore(ctx, *boundary, limit)
	default:
		return p.querier.PageInitial(ctx, limit)
	}
}

// deliver reconciles one query result into the pagination state.
func (p *Pager) deliver(sub *subscription, records []model.Record) {
	p.mu.Lock()
	if p.sub != sub {
		p.mu.Unlock()
		return
	}

	p.loading = false
	p.errMsg = ""
	p.records = records
	p.lastBatch = len(records)

	if len(records) == 0 {
		// An empty page 1 means there is no data at all; an empty later
		// page means "no further data" and prior handles stay valid.
		if p.page == 1 {
			p.first, p.last = nil, nil
		}
	} else {
		first := CursorOf(records[0])
		last := CursorOf(records[len(records)-1])
		p.first, p.last = &first, &last

		if p.page == 1 {
			p.cursors = []*Cursor{nil, &first}
		} else {
			p.setCursor(p.page, &first)
		}
	}

	callback := p.OnDeliver
	p.mu.Unlock()

	if callback != nil {
		callback()
	}
}

func (p *Pager) deliverError(sub *subscription, err error) {
	p.mu.Lock()
	if p.sub != sub {
		p.mu.Unlock()
		return
	}

	p.loading = false
	if errors.Is(err, ErrPermission) && p.Authed != nil && p.Authed() {
		// Almost certainly a race with an in-flight logout: keep it out
		// of the user-facing error state but drop the visible records.
		slog.Warn("suppressed permission error on live subscription", "error", err)
		p.records = nil
		p.lastBatch = 0
		p.first, p.last = nil, nil
	} else {
		// Stale-but-visible beats blank: records stay.
		p.errMsg = err.Error()
	}

	callback := p.OnDeliver
	p.mu.Unlock()

	if callback != nil {
		callback()
	}
}
