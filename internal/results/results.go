package results

import (
	"context"
	"encoding/json"

	"github.com/geocoder89/bootcamphub/internal/query"
	"golang.org/x/sync/errgroup"
)

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Page is the list response envelope.
type Page struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       []any      `json:"data"`
}

// Source is the minimal store surface a list endpoint needs.
type Source[T any] interface {
	Find(ctx context.Context, d query.Descriptor) ([]T, error)
	// Count returns the size of the whole collection, ignoring any filter.
	Count(ctx context.Context) (int, error)
}

// Populator joins related records into a fetched page.
type Populator[T any] interface {
	Populate(ctx context.Context, items []T) error
}

type PopulateFunc[T any] func(ctx context.Context, items []T) error

func (f PopulateFunc[T]) Populate(ctx context.Context, items []T) error {
	return f(ctx, items)
}

// Paginate computes the navigation hints for one page.
func Paginate(page, limit, total int) Pagination {
	page, limit = query.Bounds(page, limit)

	start := (page - 1) * limit
	end := page * limit

	var p Pagination

	if end < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}

	if start > 0 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}

	return p
}

// Fetch runs the descriptor against src and shapes the page.
//
// The total used for the hints is src.Count, which covers the whole
// collection rather than the filtered subset. A filtered listing can therefore
// advertise a next page that comes back empty.
func Fetch[T any](ctx context.Context, src Source[T], d query.Descriptor, populate Populator[T]) (Page, error) {
	var (
		items []T
		total int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		items, err = src.Find(gctx, d)
		return err
	})

	g.Go(func() error {
		var err error
		total, err = src.Count(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	if populate != nil && len(items) > 0 {
		if err := populate.Populate(ctx, items); err != nil {
			return Page{}, err
		}
	}

	data, err := Project(items, d.Select)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Success:    true,
		Count:      len(data),
		Pagination: Paginate(d.Page, d.Limit, total),
		Data:       data,
	}, nil
}

// alwaysKept survive any projection, the id and populated relations.
var alwaysKept = []string{"id", "courses", "bootcamp"}

// Project reduces every item to the selected JSON fields. With no selection
// the items are returned unchanged.
func Project[T any](items []T, fields []string) ([]any, error) {
	out := make([]any, 0, len(items))

	if len(fields) == 0 {
		for _, it := range items {
			out = append(out, it)
		}
		return out, nil
	}

	keep := make(map[string]struct{}, len(fields)+len(alwaysKept))
	for _, f := range fields {
		keep[f] = struct{}{}
	}
	for _, f := range alwaysKept {
		keep[f] = struct{}{}
	}

	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}

		var doc map[string]json.RawMessage
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}

		for k := range doc {
			if _, ok := keep[k]; !ok {
				delete(doc, k)
			}
		}

		out = append(out, doc)
	}

	return out, nil
}
