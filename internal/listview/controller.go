package listview

import (
	"context"
	"errors"
	"sync"
	"time"

	"cashloan/internal/domain"
	"cashloan/internal/session"
)

// ErrClosed is returned by a controller after Close.
var ErrClosed = errors.New("list controller closed")

type Fetcher[T any] interface {
	Fetch(ctx context.Context, q Query) (Page[T], error)
}

type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

func (f FetchFunc[T]) Fetch(ctx context.Context, q Query) (Page[T], error) { return f(ctx, q) }

// Snapshot is a consistent copy of controller state for rendering.
type Snapshot[T any] struct {
	Query       Query
	SearchInput string
	Page        Page[T]
	View        Page[T]
	Loading     bool
	Err         error
}

type Option[T any] func(*Controller[T])

func WithSession[T any](s session.Store) Option[T] {
	return func(c *Controller[T]) { c.session = s }
}

func WithDebounce[T any](d time.Duration) Option[T] {
	return func(c *Controller[T]) { c.debounceDelay = d }
}

func WithPageSize[T any](n int) Option[T] {
	return func(c *Controller[T]) { c.query.SetPageSize(n) }
}

func WithQuery[T any](q Query) Option[T] {
	return func(c *Controller[T]) { c.query = q.Clone() }
}

// WithOnUnauthorized sets the hook run after the session was cleared, e.g. to
// send the user to the login view.
func WithOnUnauthorized[T any](fn func()) Option[T] {
	return func(c *Controller[T]) { c.onUnauthorized = fn }
}

// WithOnChange sets a hook run after every state change.
func WithOnChange[T any](fn func(Snapshot[T])) Option[T] {
	return func(c *Controller[T]) { c.onChange = fn }
}

// Controller owns one list view's Query and Page. Each fetch carries a
// sequence number; a response older than the newest applied one is dropped,
// and a fetch superseded by a newer query is cancelled.
type Controller[T any] struct {
	desc    Descriptor[T]
	fetcher Fetcher[T]
	session session.Store

	debounceDelay  time.Duration
	debouncer      *Debouncer
	onUnauthorized func()
	onChange       func(Snapshot[T])

	root context.Context
	stop context.CancelFunc

	mu          sync.Mutex
	query       Query
	searchInput string
	page        Page[T]
	loading     bool
	err         error
	seq         uint64
	applied     uint64
	inflight    context.CancelFunc
	closed      bool
}

func New[T any](desc Descriptor[T], f Fetcher[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		desc:          desc,
		fetcher:       f,
		query:         NewQuery(DefaultPageSize),
		debounceDelay: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.root, c.stop = context.WithCancel(context.Background())
	c.debouncer = NewDebouncer(c.debounceDelay, c.applySearch)
	return c
}

func (c *Controller[T]) Descriptor() Descriptor[T] { return c.desc }

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	q := c.query.Clone()
	return Snapshot[T]{
		Query:       q,
		SearchInput: c.searchInput,
		Page:        c.page,
		View:        c.desc.Derive(c.page, q),
		Loading:     c.loading,
		Err:         c.err,
	}
}

func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.Clone()
}

// Refresh fetches with the current query.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.load(ctx)
}

// SetSearchInput records a keystroke. The query follows after the debounce
// window and only then re-fetches.
func (c *Controller[T]) SetSearchInput(s string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.searchInput = s
	c.mu.Unlock()
	c.debouncer.Input(s)
	c.notify()
}

func (c *Controller[T]) applySearch(s string) {
	c.mu.Lock()
	changed := !c.closed && c.query.SetSearch(s)
	c.mu.Unlock()
	if changed {
		_ = c.load(c.root)
	}
}

// SetSearch bypasses the debounce window.
func (c *Controller[T]) SetSearch(ctx context.Context, s string) error {
	c.debouncer.Cancel()
	return c.mutate(ctx, func(q *Query) (bool, bool) {
		c.searchInput = s
		changed := q.SetSearch(s)
		return changed, changed && !c.desc.LocalPaging
	})
}

func (c *Controller[T]) SetFilter(ctx context.Context, key, value string) error {
	return c.mutate(ctx, func(q *Query) (bool, bool) {
		changed := q.SetFilter(key, value)
		return changed, changed && c.desc.serverHandles(key)
	})
}

// ToggleSort handles a header click. Views with ServerSort re-fetch; others
// only re-order the loaded page.
func (c *Controller[T]) ToggleSort(ctx context.Context, column string) error {
	if _, ok := c.desc.Columns[column]; !ok && !c.desc.ServerSort {
		return domain.ValidationError{Field: "sort", Msg: "unknown sort column " + column}
	}
	return c.mutate(ctx, func(q *Query) (bool, bool) {
		before := q.Sort()
		q.ToggleSort(column)
		changed := before != q.Sort()
		return changed, changed && c.desc.ServerSort && !c.desc.LocalPaging
	})
}

func (c *Controller[T]) SetPage(ctx context.Context, p int) error {
	return c.mutate(ctx, func(q *Query) (bool, bool) {
		changed := q.SetPage(p)
		return changed, changed && !c.desc.LocalPaging
	})
}

func (c *Controller[T]) SetPageSize(ctx context.Context, n int) error {
	return c.mutate(ctx, func(q *Query) (bool, bool) {
		changed := q.SetPageSize(n)
		return changed, changed && !c.desc.LocalPaging
	})
}

func (c *Controller[T]) NextPage(ctx context.Context) error {
	snap := c.Snapshot()
	if !snap.View.HasNext() {
		return nil
	}
	return c.SetPage(ctx, snap.Query.Page+1)
}

func (c *Controller[T]) PrevPage(ctx context.Context) error {
	snap := c.Snapshot()
	if snap.Query.Page <= 1 {
		return nil
	}
	return c.SetPage(ctx, snap.Query.Page-1)
}

// ClearFilters drops search, filters and sort, cancelling a pending search.
func (c *Controller[T]) ClearFilters(ctx context.Context) error {
	c.debouncer.Cancel()
	return c.mutate(ctx, func(q *Query) (bool, bool) {
		c.searchInput = ""
		changed := q.Clear()
		return changed, changed && !c.desc.LocalPaging
	})
}

// mutate applies fn under the lock; fn reports (changed, needsFetch).
func (c *Controller[T]) mutate(ctx context.Context, fn func(q *Query) (bool, bool)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	changed, fetch := fn(&c.query)
	if changed && !fetch && c.staleServerPageLocked() {
		fetch = true
	}
	c.mu.Unlock()
	if !changed {
		return nil
	}
	if fetch {
		return c.load(ctx)
	}
	c.notify()
	return nil
}

// staleServerPageLocked reports whether the loaded rows belong to a server page
// other than the one the query points at, which happens when a local-only
// change resets the page.
func (c *Controller[T]) staleServerPageLocked() bool {
	if c.desc.LocalPaging || c.page.CurrentPage == 0 {
		return false
	}
	return c.page.CurrentPage != c.query.Page
}

// Patch applies fn to the loaded record with id, in place. It reports whether
// the record was on the current page.
func (c *Controller[T]) Patch(id int64, fn func(*T)) bool {
	if c.desc.ID == nil {
		return false
	}
	c.mu.Lock()
	found := false
	for i := range c.page.Items {
		if c.desc.ID(c.page.Items[i]) == id {
			items := append([]T(nil), c.page.Items...)
			fn(&items[i])
			c.page.Items = items
			found = true
			break
		}
	}
	c.mu.Unlock()
	if found {
		c.notify()
	}
	return found
}

// Close is the unmount: pending debounce and in-flight fetches are cancelled
// and no state is written afterwards.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.mu.Unlock()
	c.debouncer.Stop()
	c.stop()
}

func (c *Controller[T]) load(ctx context.Context) error {
	if ctx == nil {
		ctx = c.root
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.session != nil && !session.Authenticated(c.session) {
		c.err = domain.ErrUnauthorized
		c.mu.Unlock()
		c.unauthorized()
		return domain.ErrUnauthorized
	}
	if c.inflight != nil {
		c.inflight()
	}
	c.seq++
	seq := c.seq
	reqCtx, cancel := context.WithCancel(ctx)
	stopRoot := context.AfterFunc(c.root, cancel)
	c.inflight = cancel
	c.loading = true
	q := c.query.Clone()
	c.mu.Unlock()
	c.notify()

	page, err := c.fetcher.Fetch(reqCtx, q)
	stopRoot()
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if seq == c.seq {
		c.loading = false
		c.inflight = nil
	}
	if seq < c.applied || (seq < c.seq && errors.Is(err, context.Canceled)) {
		// a newer request already answered, or this one was superseded
		c.mu.Unlock()
		return nil
	}
	c.applied = seq
	unauth := false
	if err != nil {
		c.err = err
		unauth = domain.IsUnauthorized(err)
	} else {
		c.page = page
		c.err = nil
	}
	c.mu.Unlock()

	if unauth {
		c.unauthorized()
	}
	c.notify()
	return err
}

func (c *Controller[T]) unauthorized() {
	if c.session != nil {
		_ = c.session.Clear()
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	c.notify()
}

func (c *Controller[T]) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.Snapshot())
}
