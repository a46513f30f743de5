package backend

import (
	"bytes"
	"encoding/json"
	"errors"

	"cashloan/internal/domain"
	"cashloan/internal/listview"
)

// Envelope keys used by the list endpoints.
const (
	LoansKey    = "loans"
	UsersKey    = ""
	PaymentsKey = ""
	LendersKey  = "lenders"
)

// paginator is the Laravel LengthAwarePaginator JSON; API resources move the
// numbers under "meta".
type paginator struct {
	Data        json.RawMessage `json:"data"`
	CurrentPage int             `json:"current_page"`
	PerPage     flexInt         `json:"per_page"`
	Total       int             `json:"total"`
	LastPage    int             `json:"last_page"`
	Meta        *struct {
		CurrentPage int     `json:"current_page"`
		PerPage     flexInt `json:"per_page"`
		Total       int     `json:"total"`
	} `json:"meta"`
}

// flexInt tolerates per_page sent as "10".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	v, err := json.Number(b).Int64()
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(v)
	return nil
}

var (
	errNoItems = errors.New("no list in response")
	errNoToken = errors.New("login response has no token")
)

// DecodePage is the one place list responses are normalized. Accepted shapes,
// after selecting key when it is non-empty and present:
//
//	[...]                                    bare array, one page
//	{"data": [...], "current_page": ...}     paginator
//	{"data": [...], "meta": {...}}           resource collection
//	{"data": {"data": [...], ...}}           paginator wrapped once more
//
// Anything else is a MalformedResponseError.
func DecodePage[T any](body []byte, key string) (listview.Page[T], error) {
	raw := json.RawMessage(bytes.TrimSpace(body))
	if key != "" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			if v, ok := obj[key]; ok {
				raw = v
			}
		}
	}
	p, err := decodePage[T](raw, 2)
	if err != nil {
		return listview.Page[T]{}, domain.MalformedResponseError{Err: err}
	}
	return p, nil
}

func decodePage[T any](raw json.RawMessage, depth int) (listview.Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return listview.Page[T]{}, errNoItems
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return listview.Page[T]{}, err
		}
		return listview.NewPage(items, 1, len(items), len(items)), nil
	}
	if raw[0] != '{' {
		return listview.Page[T]{}, errNoItems
	}
	var pg paginator
	if err := json.Unmarshal(raw, &pg); err != nil {
		return listview.Page[T]{}, err
	}
	data := bytes.TrimSpace(pg.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return listview.Page[T]{}, errNoItems
	}
	if data[0] == '{' {
		if depth <= 1 {
			return listview.Page[T]{}, errNoItems
		}
		return decodePage[T](data, depth-1)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return listview.Page[T]{}, err
	}
	current, size, total := pg.CurrentPage, int(pg.PerPage), pg.Total
	if pg.Meta != nil {
		current, size, total = pg.Meta.CurrentPage, int(pg.Meta.PerPage), pg.Meta.Total
	}
	if size <= 0 {
		size = len(items)
	}
	if total == 0 && pg.LastPage <= 1 {
		total = len(items)
	}
	return listview.NewPage(items, current, size, total), nil
}
