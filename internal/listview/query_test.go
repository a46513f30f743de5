package listview

import (
	"net/url"
	"reflect"
	"testing"
)

func TestQueryShapeChangesResetPage(t *testing.T) {
	cases := map[string]func(q *Query) bool{
		"search":    func(q *Query) bool { return q.SetSearch("jane") },
		"status":    func(q *Query) bool { return q.SetFilter("status", "approved") },
		"type":      func(q *Query) bool { return q.SetFilter("type", "overdue") },
		"sort":      func(q *Query) bool { q.ToggleSort("amount"); return true },
		"page_size": func(q *Query) bool { return q.SetPageSize(25) },
	}
	for name, change := range cases {
		q := NewQuery(10)
		q.SetPage(4)
		if !change(&q) {
			t.Fatalf("%s: expected a change", name)
		}
		if q.Page != 1 {
			t.Fatalf("%s: expected page reset to 1, got %d", name, q.Page)
		}
	}
}

func TestQueryNoopKeepsPage(t *testing.T) {
	q := NewQuery(10)
	q.SetSearch("jane")
	q.SetPage(3)
	if q.SetSearch("  jane ") {
		t.Fatalf("same search after trim should not be a change")
	}
	if q.SetFilter("status", "all") {
		t.Fatalf("setting all on an unset filter should not be a change")
	}
	if q.Page != 3 {
		t.Fatalf("page should stay 3, got %d", q.Page)
	}
}

func TestQuerySetPageClamps(t *testing.T) {
	q := NewQuery(10)
	q.SetPage(-2)
	if q.Page != 1 {
		t.Fatalf("expected 1, got %d", q.Page)
	}
	q.SetPageSize(1000)
	if q.PageSize != MaxPageSize {
		t.Fatalf("expected page size capped at %d, got %d", MaxPageSize, q.PageSize)
	}
}

func TestQueryFilterAllRemovesKey(t *testing.T) {
	q := NewQuery(10)
	q.SetFilter("status", "Approved")
	if q.Filter("status") != "approved" {
		t.Fatalf("filter should be lowercased, got %q", q.Filter("status"))
	}
	q.SetFilter("status", "ALL")
	if _, ok := q.Filters["status"]; ok {
		t.Fatalf("all should remove the filter")
	}
}

func TestQueryClear(t *testing.T) {
	q := NewQuery(10)
	q.SetSearch("x")
	q.SetFilter("status", "pending")
	q.ToggleSort("created_at")
	q.SetPage(2)
	if !q.Clear() {
		t.Fatalf("expected clear to report a change")
	}
	if q.Search != "" || len(q.Filters) != 0 || q.SortColumn != "" || q.Page != 1 {
		t.Fatalf("query not cleared: %+v", q)
	}
	if q.Clear() {
		t.Fatalf("second clear should be a no-op")
	}
}

func TestQueryValuesLoans(t *testing.T) {
	q := NewQuery(15)
	q.SetSearch("jane")
	q.SetFilter("status", "approved")
	q.ToggleSort("created_at")
	q.ToggleSort("created_at")
	q.SetPage(2)

	got := q.Values(LoanParams)
	want := url.Values{
		"page":       {"2"},
		"per_page":   {"15"},
		"search":     {"jane"},
		"status":     {"approved"},
		"sort_by":    {"created_at"},
		"sort_order": {"desc"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected values\n got %v\nwant %v", got, want)
	}
}

func TestQueryValuesPaymentsSendAll(t *testing.T) {
	q := NewQuery(10)
	got := q.Values(PaymentParams)
	if got.Get("type") != "all" {
		t.Fatalf("payments should send type=all, got %q", got.Get("type"))
	}
	if got.Has("sort_column") {
		t.Fatalf("unsorted query should not send a sort column")
	}

	lq := NewQuery(10)
	if lq.Values(LoanParams).Has("status") {
		t.Fatalf("loans should omit status=all")
	}
}

func TestParseQueryRoundTrip(t *testing.T) {
	q := NewQuery(20)
	q.SetSearch("smith")
	q.SetFilter("type", "paid")
	q.ToggleSort("amount")
	q.SetPage(3)

	back := ParseQuery(q.Values(PaymentParams), PaymentParams, 10)
	if back.Search != "smith" || back.Filter("type") != "paid" || back.SortColumn != "amount" ||
		back.SortOrder != SortAsc || back.Page != 3 || back.PageSize != 20 {
		t.Fatalf("unexpected parsed query %+v", back)
	}
}

func TestActiveFilters(t *testing.T) {
	q := NewQuery(10)
	q.SetSearch("jane")
	q.SetFilter("status", "approved")
	q.ToggleSort("amount")
	got := q.ActiveFilters()
	want := []string{"Search: jane", "Status: approved", "Sort: amount (asc)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
