package listview

import (
	"cmp"
	"slices"
	"strings"
)

// SortState is single-column sort state for a table header.
type SortState struct {
	Column string
	Order  SortOrder
}

// Toggle cycles column through unsorted -> asc -> desc -> unsorted. Clicking a
// different column drops the previous one and starts at asc.
func (s SortState) Toggle(column string) SortState {
	if column == "" {
		return SortState{}
	}
	if s.Column != column {
		return SortState{Column: column, Order: SortAsc}
	}
	switch s.Order {
	case SortAsc:
		return SortState{Column: column, Order: SortDesc}
	case SortDesc:
		return SortState{}
	default:
		return SortState{Column: column, Order: SortAsc}
	}
}

// OrderOf reports how column is currently sorted.
func (s SortState) OrderOf(column string) SortOrder {
	if s.Column != column {
		return SortNone
	}
	return s.Order
}

// Compare orders two records for one column.
type Compare[T any] func(a, b T) int

func ByString[T any](get func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

func ByNumber[T any, N cmp.Ordered](get func(T) N) Compare[T] {
	return func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}
}

// SortItems returns a sorted copy. Unknown columns and SortNone keep the
// original order.
func SortItems[T any](items []T, state SortState, columns map[string]Compare[T]) []T {
	out := slices.Clone(items)
	cmpFn, ok := columns[state.Column]
	if !ok || state.Order == SortNone {
		return out
	}
	if state.Order == SortDesc {
		slices.SortStableFunc(out, func(a, b T) int { return cmpFn(b, a) })
	} else {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}
