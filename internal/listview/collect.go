package listview

import "context"

// Collect walks every server page for q, up to limit records, and returns them
// in server order. It is used by exports, which need the whole filtered set.
func Collect[T any](ctx context.Context, f Fetcher[T], q Query, limit int) ([]T, error) {
	q = q.Clone()
	if q.PageSize <= 0 {
		q.PageSize = MaxPageSize
	}
	q.Page = 1
	var out []T
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := f.Fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		if len(p.Items) == 0 || q.Page >= p.TotalPages {
			return out, nil
		}
		q.Page++
	}
}
