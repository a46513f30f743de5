package listview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cashloan/internal/domain"
	"cashloan/internal/session"
)

type fakeFetcher struct {
	mu      sync.Mutex
	queries []Query
	fn      func(ctx context.Context, q Query) (Page[row], error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, q Query) (Page[row], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.fn(ctx, q)
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeFetcher) last() Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func serverDescriptor() Descriptor[row] {
	d := rowDescriptor(MatchAnyField)
	d.LocalPaging = false
	d.ServerSearch = true
	return d
}

func pageOf(ids ...int64) Page[row] {
	items := make([]row, len(ids))
	for i, id := range ids {
		items[i] = row{ID: id, Status: "pending"}
	}
	return NewPage(items, 1, 10, len(items))
}

func TestControllerNoTokenFailsFast(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) { return pageOf(1), nil }}
	redirected := false
	c := New[row](serverDescriptor(), f,
		WithSession[row](session.NewMemoryStore("")),
		WithOnUnauthorized[row](func() { redirected = true }),
	)
	defer c.Close()

	err := c.Refresh(context.Background())
	if !domain.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if f.calls() != 0 {
		t.Fatalf("expected zero fetches, got %d", f.calls())
	}
	if !redirected {
		t.Fatalf("expected login redirect hook")
	}
	if !domain.IsUnauthorized(c.Snapshot().Err) {
		t.Fatalf("error state should be unauthorized")
	}
}

func TestControllerFailureKeepsStalePage(t *testing.T) {
	fail := false
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) {
		if fail {
			return Page[row]{}, domain.UpstreamError{Status: 500, Message: "Backend down"}
		}
		return pageOf(1, 2), nil
	}}
	c := New[row](serverDescriptor(), f, WithSession[row](session.NewMemoryStore("tok")))
	defer c.Close()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fail = true
	if err := c.SetFilter(context.Background(), "status", "approved"); err == nil {
		t.Fatalf("expected upstream error")
	}
	snap := c.Snapshot()
	if len(snap.Page.Items) != 2 {
		t.Fatalf("stale page should stay visible, got %d items", len(snap.Page.Items))
	}
	if domain.UserMessage(snap.Err, "x") != "Backend down" {
		t.Fatalf("expected server message, got %v", snap.Err)
	}
	if snap.Loading {
		t.Fatalf("loading should be off after the request")
	}

	fail = false
	if err := c.Refresh(context.Background()); err != nil || c.Snapshot().Err != nil {
		t.Fatalf("success should clear the error: %v", err)
	}
}

func TestControllerBackend401ClearsSession(t *testing.T) {
	store := session.NewMemoryStore("tok")
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) {
		return Page[row]{}, domain.UnauthorizedError{Msg: "Unauthenticated."}
	}}
	c := New[row](serverDescriptor(), f, WithSession[row](store))
	defer c.Close()

	_ = c.Refresh(context.Background())
	if session.Authenticated(store) {
		t.Fatalf("session should be cleared after a 401")
	}
}

func TestControllerDiscardsStaleResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	f := &fakeFetcher{fn: func(_ context.Context, q Query) (Page[row], error) {
		if q.Search == "" {
			close(entered)
			<-release
			// ignores cancellation and answers late
			return pageOf(1), nil
		}
		return pageOf(2), nil
	}}
	c := New[row](serverDescriptor(), f)
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	if err := c.SetSearch(context.Background(), "jane"); err != nil {
		t.Fatalf("search: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stale refresh should be discarded silently: %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Page.Items) != 1 || snap.Page.Items[0].ID != 2 {
		t.Fatalf("newest response should win, got %+v", snap.Page.Items)
	}
	if snap.Loading {
		t.Fatalf("loading should be off")
	}
}

func TestControllerSupersededRequestIsCancelled(t *testing.T) {
	entered := make(chan struct{})
	cancelled := make(chan struct{})
	f := &fakeFetcher{fn: func(ctx context.Context, q Query) (Page[row], error) {
		if q.Search == "" {
			close(entered)
			<-ctx.Done()
			close(cancelled)
			return Page[row]{}, ctx.Err()
		}
		return pageOf(3), nil
	}}
	c := New[row](serverDescriptor(), f)
	defer c.Close()

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered
	if err := c.SetSearch(context.Background(), "x"); err != nil {
		t.Fatalf("search: %v", err)
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("superseded request was not cancelled")
	}
	if err := <-done; err != nil {
		t.Fatalf("superseded request should not report an error: %v", err)
	}
	if c.Snapshot().Err != nil {
		t.Fatalf("cancellation must not surface as an error")
	}
}

func TestControllerCloseCancelsInflight(t *testing.T) {
	entered := make(chan struct{})
	f := &fakeFetcher{fn: func(ctx context.Context, _ Query) (Page[row], error) {
		close(entered)
		<-ctx.Done()
		return Page[row]{}, ctx.Err()
	}}
	c := New[row](serverDescriptor(), f)

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered
	c.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("close did not cancel the request")
	}
	if err := c.Refresh(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("refresh after close should fail, got %v", err)
	}
}

func TestControllerDebouncedSearch(t *testing.T) {
	fetched := make(chan Query, 4)
	f := &fakeFetcher{fn: func(_ context.Context, q Query) (Page[row], error) {
		fetched <- q
		return pageOf(1), nil
	}}
	c := New[row](serverDescriptor(), f, WithDebounce[row](30*time.Millisecond))
	defer c.Close()
	_ = c.SetPage(context.Background(), 3)
	<-fetched

	for _, v := range []string{"j", "ja", "jane"} {
		c.SetSearchInput(v)
	}
	if f.calls() != 1 {
		t.Fatalf("keystrokes should not fetch, got %d calls", f.calls())
	}
	select {
	case q := <-fetched:
		if q.Search != "jane" || q.Page != 1 {
			t.Fatalf("expected search jane on page 1, got %+v", q)
		}
	case <-time.After(time.Second):
		t.Fatalf("debounced search never fetched")
	}
	if got := c.Snapshot().SearchInput; got != "jane" {
		t.Fatalf("raw input should be kept, got %q", got)
	}
}

func TestControllerCloseBeforeDebounceWindow(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) { return pageOf(1), nil }}
	c := New[row](serverDescriptor(), f, WithDebounce[row](20*time.Millisecond))
	c.SetSearchInput("jane")
	c.Close()
	time.Sleep(60 * time.Millisecond)
	if f.calls() != 0 {
		t.Fatalf("no fetch may happen after close, got %d", f.calls())
	}
	if c.Query().Search != "" {
		t.Fatalf("query must not change after close")
	}
}

func TestControllerLocalSortDoesNotFetch(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) {
		return NewPage([]row{{ID: 1, Amount: 3}, {ID: 2, Amount: 1}}, 1, 10, 2), nil
	}}
	c := New[row](serverDescriptor(), f)
	defer c.Close()
	_ = c.Refresh(context.Background())

	if err := c.ToggleSort(context.Background(), "amount"); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if f.calls() != 1 {
		t.Fatalf("local sort should not refetch, got %d calls", f.calls())
	}
	v := c.Snapshot().View
	if v.Items[0].ID != 2 {
		t.Fatalf("view should be sorted ascending, got %+v", v.Items)
	}
	if err := c.ToggleSort(context.Background(), "nope"); !domain.IsValidation(err) {
		t.Fatalf("unknown column should be rejected, got %v", err)
	}
}

func TestControllerServerSortFetches(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) { return pageOf(1), nil }}
	d := serverDescriptor()
	d.ServerSort = true
	c := New[row](d, f)
	defer c.Close()

	_ = c.ToggleSort(context.Background(), "created_at")
	if f.calls() != 1 || f.last().SortColumn != "created_at" || f.last().SortOrder != SortAsc {
		t.Fatalf("expected one sorted fetch, got %d", f.calls())
	}
}

func TestControllerPatch(t *testing.T) {
	f := &fakeFetcher{fn: func(context.Context, Query) (Page[row], error) { return pageOf(1, 2), nil }}
	c := New[row](serverDescriptor(), f)
	defer c.Close()
	_ = c.Refresh(context.Background())

	if !c.Patch(2, func(r *row) { r.Status = "rejected" }) {
		t.Fatalf("expected record 2 to be patched")
	}
	if c.Snapshot().Page.Items[1].Status != "rejected" {
		t.Fatalf("patch not applied")
	}
	if c.Patch(99, func(r *row) {}) {
		t.Fatalf("unknown id should not patch")
	}
}

func TestControllerLocalFilterReloadsFirstServerPage(t *testing.T) {
	f := &fakeFetcher{fn: func(_ context.Context, q Query) (Page[row], error) {
		items := []row{{ID: int64(q.Page*10 + 1), Status: "pending"}, {ID: int64(q.Page*10 + 2), Status: "approved"}}
		return NewPage(items, q.Page, 2, 10), nil
	}}
	d := serverDescriptor()
	d.Fields = map[string]func(row) string{
		"status": func(r row) string { return r.Status },
		"kind":   func(r row) string { return r.Status },
	}
	c := New[row](d, f, WithPageSize[row](2))
	defer c.Close()

	if err := c.SetPage(context.Background(), 3); err != nil {
		t.Fatalf("page: %v", err)
	}
	if c.Snapshot().Page.CurrentPage != 3 {
		t.Fatalf("expected server page 3 loaded")
	}
	before := f.calls()

	if err := c.SetFilter(context.Background(), "kind", "approved"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.calls() != before+1 {
		t.Fatalf("expected a reload of page 1, got %d fetches (before %d)", f.calls(), before)
	}
	if got := f.last(); got.Page != 1 || got.Filter("kind") != "approved" {
		t.Fatalf("expected page 1 with the local filter kept, got %+v", got)
	}
	snap := c.Snapshot()
	if snap.Page.CurrentPage != 1 || snap.Query.Page != 1 {
		t.Fatalf("loaded page %d, query page %d", snap.Page.CurrentPage, snap.Query.Page)
	}
	if len(snap.View.Items) != 1 || snap.View.Items[0].ID != 12 {
		t.Fatalf("expected only the approved row of page 1, got %+v", snap.View.Items)
	}

	// already on page 1: a local-only change needs no fetch
	if err := c.SetFilter(context.Background(), "kind", "pending"); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.calls() != before+1 {
		t.Fatalf("local filter on the loaded page should not fetch, got %d", f.calls())
	}
}
