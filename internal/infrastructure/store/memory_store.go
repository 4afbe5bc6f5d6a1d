package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory DocumentStore with the same query semantics as
// the remote backends. Used by tests, the CLI and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any // collection -> id -> fields
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]map[string]any),
		now:  time.Now,
	}
}

// WithClock replaces the clock used to stamp createdAt/updatedAt.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Put stores a document under a caller-chosen id, replacing any existing one.
func (s *MemoryStore) Put(collection, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
	}
	s.data[collection][id] = copyFields(fields)
}

// Query returns one page of matching documents
func (s *MemoryStore) Query(ctx context.Context, q Query) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if err := q.Validate(); err != nil {
		return Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []Document
	for id, fields := range s.data[q.Collection] {
		if !matchAll(fields, q.Filters) {
			continue
		}
		if q.OrderBy != nil {
			if _, ok := fields[q.OrderBy.Field]; !ok {
				continue
			}
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}

	sort.Slice(docs, func(i, j int) bool {
		return less(q.OrderBy, docs[i], docs[j])
	})

	if c := q.StartAfter; c != nil {
		pivot := Document{ID: c.id}
		if q.OrderBy != nil {
			pivot.Fields = map[string]any{q.OrderBy.Field: c.value}
		}
		start := sort.Search(len(docs), func(i int) bool {
			return less(q.OrderBy, pivot, docs[i])
		})
		docs = docs[start:]
	}

	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = Document{ID: d.ID, Fields: copyFields(d.Fields)}
	}
	return Page{Documents: out, Next: q.nextCursor(out)}, nil
}

// Get retrieves a document by id
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.data[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: copyFields(fields)}, nil
}

// Add inserts a document under a generated id
func (s *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := copyFields(fields)
	now := s.now().UTC()
	if _, ok := doc[FieldCreatedAt]; !ok {
		doc[FieldCreatedAt] = now
	}
	if _, ok := doc[FieldUpdatedAt]; !ok {
		doc[FieldUpdatedAt] = now
	}

	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]map[string]any)
	}
	s.data[collection][id] = doc
	return id, nil
}

// Count returns the number of documents in a collection
func (s *MemoryStore) Count(ctx context.Context, collection string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[collection]), nil
}

// Increment adds delta to a numeric field
func (s *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	current, _ := toFloat(fields[field])
	fields[field] = int(current) + delta
	return nil
}

func matchAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matchFilter(fields, f) {
			return false
		}
	}
	return true
}

// less orders by (order field, id), both in the order's direction. Mixed
// value kinds order by kind rank.
func less(order *Order, a, b Document) bool {
	desc := order != nil && order.Desc
	if order != nil {
		if c := orderValues(a.Fields[order.Field], b.Fields[order.Field]); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
	}
	if desc {
		return a.ID > b.ID
	}
	return a.ID < b.ID
}
