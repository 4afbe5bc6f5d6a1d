package listing

import (
	"context"

	"github.com/example/supermall/internal/infrastructure/store"
)

// Result is one page as returned to an HTTP client
type Result[T any] struct {
	Items      []T    `json:"items"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// FetchPage resumes from an opaque cursor token and fetches a single page.
// An empty token fetches the first page.
func FetchPage[T any](ctx context.Context, source Source[T], token string) (Result[T], error) {
	after, err := store.DecodeCursor(token)
	if err != nil {
		return Result[T]{}, err
	}

	page, err := source(ctx, after)
	if err != nil {
		return Result[T]{}, err
	}

	res := Result[T]{Items: page.Items, HasMore: page.Next != nil}
	if res.Items == nil {
		res.Items = []T{}
	}
	if page.Next != nil {
		res.NextCursor = page.Next.Encode()
	}
	return res, nil
}

// Collect decodes a store page with fn
func Collect[T any](page store.Page, fn func(store.Document) T) Page[T] {
	items := make([]T, len(page.Documents))
	for i, d := range page.Documents {
		items[i] = fn(d)
	}
	return Page[T]{Items: items, Next: page.Next}
}
