package listview

import "strings"

// SearchPolicy decides how a search term is matched against a record's
// searchable fields.
type SearchPolicy int

const (
	// MatchAnyField: the term is a substring of at least one field.
	MatchAnyField SearchPolicy = iota
	// MatchJoined: the term is a substring of the fields joined by single spaces,
	// so "jane doe" matches first name "Jane" + last name "Doe".
	MatchJoined
)

// Descriptor configures one list view.
type Descriptor[T any] struct {
	Name   string
	Params ParamNames

	SearchPolicy SearchPolicy
	SearchFields func(T) []string
	// ServerSearch means the endpoint filters by search itself; the local pass
	// then skips the search predicate.
	ServerSearch bool

	// Fields are the status/type accessors used by filter keys.
	Fields map[string]func(T) string
	// Columns are the sortable table headers.
	Columns map[string]Compare[T]
	// ServerSort forwards sort to the endpoint instead of sorting the loaded page.
	ServerSort bool
	// LocalPaging means the endpoint returns the whole collection and paging is
	// done over the locally filtered set.
	LocalPaging bool

	ID func(T) int64
}

// Matches applies the search predicate only.
func (d Descriptor[T]) Matches(item T, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || d.SearchFields == nil {
		return true
	}
	fields := d.SearchFields(item)
	if d.SearchPolicy == MatchJoined {
		return strings.Contains(strings.ToLower(strings.Join(fields, " ")), term)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// MatchesValue is the status/type predicate: case-insensitive equality, with
// AllFilter and "" passing everything.
func MatchesValue(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, AllFilter) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), filter)
}

// serverHandles reports whether the endpoint applies filter key itself.
func (d Descriptor[T]) serverHandles(key string) bool {
	if d.LocalPaging {
		return false
	}
	_, ok := d.Params.Filters[key]
	return ok
}

// LocalFiltering reports whether q needs a client-side pass for this view.
func (d Descriptor[T]) LocalFiltering(q Query) bool {
	if q.Search != "" && (!d.ServerSearch || d.LocalPaging) && d.SearchFields != nil {
		return true
	}
	for key, val := range q.Filters {
		if val == "" || val == AllFilter {
			continue
		}
		if _, ok := d.Fields[key]; ok && !d.serverHandles(key) {
			return true
		}
	}
	return false
}

// FilterItems runs the secondary, client-side pass over already loaded items.
func (d Descriptor[T]) FilterItems(items []T, q Query) []T {
	if !d.LocalFiltering(q) {
		return items
	}
	search := q.Search
	if d.ServerSearch && !d.LocalPaging {
		search = ""
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !d.Matches(it, search) {
			continue
		}
		keep := true
		for key, val := range q.Filters {
			get, ok := d.Fields[key]
			if !ok || d.serverHandles(key) {
				continue
			}
			if !MatchesValue(get(it), val) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

// Derive turns a fetched page into what the table shows: local filter, local
// sort (unless forwarded to the server) and, when anything was filtered
// locally, pagination recomputed from the filtered count.
func (d Descriptor[T]) Derive(p Page[T], q Query) Page[T] {
	items := d.FilterItems(p.Items, q)
	if !d.ServerSort || d.LocalPaging {
		items = SortItems(items, q.Sort(), d.Columns)
	}
	switch {
	case d.LocalPaging:
		return Paginate(items, q.Page, q.PageSize)
	case d.LocalFiltering(q):
		return Paginate(items, 1, max(p.PageSize, q.PageSize))
	default:
		p.Items = items
		return p
	}
}

// DeriveAll is Derive over a collected server result: every server page is
// already in items, so filtering and paging are both done locally.
func (d Descriptor[T]) DeriveAll(items []T, q Query) Page[T] {
	items = d.FilterItems(items, q)
	if !d.ServerSort || d.LocalPaging {
		items = SortItems(items, q.Sort(), d.Columns)
	}
	return Paginate(items, q.Page, q.PageSize)
}
