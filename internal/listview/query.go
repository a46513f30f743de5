// Package listview is the list controller shared by every list screen: query
// state with a debounced search box, remote fetch, a local filter/sort pass,
// pagination math and action dialogs.
package listview

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// AllFilter is the sentinel filter value that disables a status/type filter.
const AllFilter = "all"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query is the controller-owned list query. Every change to its shape (search,
// filters, sort) moves back to page 1 because the old page number no longer
// means anything.
type Query struct {
	Page       int
	PageSize   int
	Search     string
	SortColumn string
	SortOrder  SortOrder
	Filters    map[string]string
}

func NewQuery(pageSize int) Query {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Query{Page: 1, PageSize: pageSize, Filters: map[string]string{}}
}

func (q Query) Clone() Query {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

// SetSearch reports whether the query changed.
func (q *Query) SetSearch(s string) bool {
	s = strings.TrimSpace(s)
	if s == q.Search {
		return false
	}
	q.Search = s
	q.Page = 1
	return true
}

// Filter returns the active value for key, or AllFilter.
func (q Query) Filter(key string) string {
	if v, ok := q.Filters[key]; ok && v != "" {
		return v
	}
	return AllFilter
}

func (q *Query) SetFilter(key, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		value = AllFilter
	}
	if q.Filter(key) == value {
		return false
	}
	if q.Filters == nil {
		q.Filters = map[string]string{}
	}
	if value == AllFilter {
		delete(q.Filters, key)
	} else {
		q.Filters[key] = value
	}
	q.Page = 1
	return true
}

func (q *Query) SetSort(column string, order SortOrder) bool {
	if column == "" || order == SortNone {
		column, order = "", SortNone
	}
	if q.SortColumn == column && q.SortOrder == order {
		return false
	}
	q.SortColumn = column
	q.SortOrder = order
	q.Page = 1
	return true
}

// ToggleSort advances the sort cycle for column, see SortState.Toggle.
func (q *Query) ToggleSort(column string) {
	next := q.Sort().Toggle(column)
	q.SetSort(next.Column, next.Order)
}

func (q Query) Sort() SortState {
	return SortState{Column: q.SortColumn, Order: q.SortOrder}
}

func (q *Query) SetPage(p int) bool {
	if p < 1 {
		p = 1
	}
	if p == q.Page {
		return false
	}
	q.Page = p
	return true
}

func (q *Query) SetPageSize(n int) bool {
	if n <= 0 {
		n = DefaultPageSize
	}
	if n > MaxPageSize {
		n = MaxPageSize
	}
	if n == q.PageSize {
		return false
	}
	q.PageSize = n
	q.Page = 1
	return true
}

// Clear drops search, filters and sort.
func (q *Query) Clear() bool {
	if q.Search == "" && len(q.Filters) == 0 && q.SortColumn == "" {
		return false
	}
	q.Search = ""
	q.Filters = map[string]string{}
	q.SortColumn, q.SortOrder = "", SortNone
	q.Page = 1
	return true
}

// ActiveFilters summarises the non-default parts of the query for display.
func (q Query) ActiveFilters() []string {
	var out []string
	if q.Search != "" {
		out = append(out, "Search: "+q.Search)
	}
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := q.Filters[k]; v != "" && v != AllFilter {
			out = append(out, fmt.Sprintf("%s: %s", titleWord(k), v))
		}
	}
	if q.SortColumn != "" {
		out = append(out, fmt.Sprintf("Sort: %s (%s)", q.SortColumn, q.SortOrder))
	}
	return out
}

// ParamNames maps query fields onto one endpoint's query-string names.
type ParamNames struct {
	Page       string
	PageSize   string
	Search     string
	SortColumn string
	SortOrder  string
	// Filters maps a filter key to its parameter name; keys missing here are
	// never sent and stay local.
	Filters map[string]string
	// SendAll sends the "all" sentinel instead of omitting the filter.
	SendAll bool
}

var (
	LoanParams = ParamNames{
		Page: "page", PageSize: "per_page", Search: "search",
		SortColumn: "sort_by", SortOrder: "sort_order",
		Filters: map[string]string{"status": "status"},
	}
	UserParams = ParamNames{
		Page: "page", PageSize: "per_page", Search: "search",
		SortColumn: "sort_by", SortOrder: "sort_order",
		Filters: map[string]string{"status": "status"},
	}
	PaymentParams = ParamNames{
		Page: "page", PageSize: "per_page", Search: "search",
		SortColumn: "sort_column", SortOrder: "sort_order",
		Filters: map[string]string{"type": "type"},
		SendAll: true,
	}
)

// Values encodes q with the endpoint's parameter names. Sort is only sent when
// both column and order are set.
func (q Query) Values(p ParamNames) url.Values {
	v := url.Values{}
	if p.Page != "" {
		v.Set(p.Page, strconv.Itoa(max(q.Page, 1)))
	}
	if p.PageSize != "" && q.PageSize > 0 {
		v.Set(p.PageSize, strconv.Itoa(q.PageSize))
	}
	if p.Search != "" && q.Search != "" {
		v.Set(p.Search, q.Search)
	}
	if p.SortColumn != "" && q.SortColumn != "" && q.SortOrder != SortNone {
		v.Set(p.SortColumn, q.SortColumn)
		v.Set(p.SortOrder, string(q.SortOrder))
	}
	for key, name := range p.Filters {
		val := q.Filter(key)
		if val == AllFilter && !p.SendAll {
			continue
		}
		v.Set(name, val)
	}
	return v
}

// ParseQuery is the inverse of Values; unknown or invalid parameters fall back
// to defaults.
func ParseQuery(v url.Values, p ParamNames, defaultPageSize int) Query {
	q := NewQuery(defaultPageSize)
	if n, err := strconv.Atoi(v.Get(p.PageSize)); err == nil {
		q.SetPageSize(n)
	}
	q.SetSearch(v.Get(p.Search))
	for key, name := range p.Filters {
		q.SetFilter(key, v.Get(name))
	}
	if col := strings.TrimSpace(v.Get(p.SortColumn)); col != "" {
		switch SortOrder(strings.ToLower(v.Get(p.SortOrder))) {
		case SortDesc:
			q.SetSort(col, SortDesc)
		default:
			q.SetSort(col, SortAsc)
		}
	}
	if n, err := strconv.Atoi(v.Get(p.Page)); err == nil {
		q.SetPage(n)
	}
	return q
}

func titleWord(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
