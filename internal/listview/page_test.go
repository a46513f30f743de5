package listview

import (
	"context"
	"testing"
)

func TestTotalPages(t *testing.T) {
	cases := []struct{ total, size, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{45, 10, 5},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.size); got != c.want {
			t.Fatalf("TotalPages(%d,%d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestPageInvariants(t *testing.T) {
	items := make([]int, 37)
	for size := 1; size <= 12; size++ {
		for page := 0; page <= 40; page++ {
			p := Paginate(items, page, size)
			if len(p.Items) > p.PageSize {
				t.Fatalf("size %d page %d: %d items over page size", size, page, len(p.Items))
			}
			if p.TotalPages != TotalPages(p.TotalItems, p.PageSize) {
				t.Fatalf("size %d: total pages %d mismatch", size, p.TotalPages)
			}
		}
	}
}

func TestNewPageTruncates(t *testing.T) {
	p := NewPage([]int{1, 2, 3, 4}, 1, 3, 2)
	if len(p.Items) != 3 || p.TotalItems != 3 || p.TotalPages != 1 {
		t.Fatalf("unexpected page %+v", p)
	}
}

func TestPaginateClampsAndRange(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	p := Paginate(items, 9, 5)
	if p.CurrentPage != 3 || len(p.Items) != 2 {
		t.Fatalf("expected clamp to last page, got %+v", p)
	}
	if p.From() != 11 || p.To() != 12 || p.HasNext() || !p.HasPrev() {
		t.Fatalf("unexpected range %d-%d", p.From(), p.To())
	}
	empty := Paginate([]int(nil), 3, 5)
	if empty.CurrentPage != 1 || empty.From() != 0 || empty.TotalPages != 0 {
		t.Fatalf("unexpected empty page %+v", empty)
	}
}

func TestCollectWalksPages(t *testing.T) {
	all := make([]int, 23)
	for i := range all {
		all[i] = i
	}
	calls := 0
	f := FetchFunc[int](func(_ context.Context, q Query) (Page[int], error) {
		calls++
		p := Paginate(all, q.Page, q.PageSize)
		return p, nil
	})
	q := NewQuery(10)
	got, err := Collect[int](context.Background(), f, q, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 23 || calls != 3 {
		t.Fatalf("expected 23 items over 3 calls, got %d over %d", len(got), calls)
	}

	capped, err := Collect[int](context.Background(), f, q, 15)
	if err != nil || len(capped) != 15 {
		t.Fatalf("expected 15 capped items, got %d (%v)", len(capped), err)
	}
}
