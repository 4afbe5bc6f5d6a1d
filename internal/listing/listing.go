// Package listing tracks "load more" pagination for one view.
package listing

import (
	"context"
	"errors"
	"sync"

	"github.com/example/supermall/internal/infrastructure/store"
	"go.uber.org/zap"
)

// ErrClosed is returned by loads issued after Close, and by loads whose
// result arrived after Close.
var ErrClosed = errors.New("listing closed")

// State of a listing
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Page is one decoded page. Next is set when the raw page was full.
type Page[T any] struct {
	Items []T
	Next  *store.Cursor
}

// Source fetches the page after the given cursor; nil means the first page.
type Source[T any] func(ctx context.Context, after *store.Cursor) (Page[T], error)

// Listing accumulates pages from a Source. Items are only ever appended;
// an item whose key is already held is dropped.
type Listing[T any] struct {
	mu     sync.Mutex
	source Source[T]
	key    func(T) string
	logger *zap.Logger

	items   []T
	seen    map[string]struct{}
	cursor  *store.Cursor
	state   State
	loading bool
	closed  bool
	gen     uint64
}

func New[T any](source Source[T], key func(T) string, logger *zap.Logger) *Listing[T] {
	return &Listing[T]{
		source: source,
		key:    key,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Load fetches a fresh first page and replaces the held items. A Load
// supersedes any fetch still in flight.
func (l *Listing[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.gen++
	gen := l.gen
	l.loading = true
	l.mu.Unlock()

	page, err := l.source(ctx, nil)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	if gen != l.gen {
		// superseded by a newer Load; its caller owns the loading flag
		return nil
	}
	l.loading = false
	if err != nil {
		return err
	}

	l.items = nil
	l.seen = make(map[string]struct{})
	l.apply(page)
	return nil
}

// LoadMore appends the next page. It issues no request and returns false
// when there is no cursor, the listing is exhausted, or a fetch is in flight.
func (l *Listing[T]) LoadMore(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false, ErrClosed
	}
	if l.loading || l.state != StateLoaded || l.cursor == nil {
		l.mu.Unlock()
		return false, nil
	}
	gen := l.gen
	after := l.cursor
	l.loading = true
	l.mu.Unlock()

	page, err := l.source(ctx, after)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return true, ErrClosed
	}
	if gen != l.gen {
		return true, nil
	}
	l.loading = false
	if err != nil {
		return true, err
	}

	l.apply(page)
	return true, nil
}

// apply appends page items under the lock.
func (l *Listing[T]) apply(page Page[T]) {
	for _, item := range page.Items {
		k := l.key(item)
		if _, dup := l.seen[k]; dup {
			l.logger.Warn("dropping duplicate item at page boundary", zap.String("key", k))
			continue
		}
		l.seen[k] = struct{}{}
		l.items = append(l.items, item)
	}

	l.cursor = page.Next
	if page.Next != nil {
		l.state = StateLoaded
	} else {
		l.state = StateExhausted
	}
}

// Items returns a copy of the accumulated items
func (l *Listing[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// HasMore reports whether the last page was full
func (l *Listing[T]) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateLoaded
}

func (l *Listing[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Cursor is the continuation of the last page, nil when exhausted or empty
func (l *Listing[T]) Cursor() *store.Cursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor
}

// Loading is true only while a fetch is in flight
func (l *Listing[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Close discards the listing. Results arriving afterwards are not applied.
func (l *Listing[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.loading = false
}
