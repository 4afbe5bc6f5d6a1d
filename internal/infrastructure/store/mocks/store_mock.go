package mocks

import (
	"context"
	"sync"

	"github.com/example/supermall/internal/infrastructure/store"
)

// MockDocumentStore wraps a MemoryStore, records every call and lets tests
// inject failures per operation.
type MockDocumentStore struct {
	*store.MemoryStore

	mu sync.Mutex

	// For tracking calls in tests
	QueryCalls     []store.Query
	GetCalls       []GetCall
	AddCalls       []AddCall
	CountCalls     []string
	IncrementCalls []IncrementCall

	QueryErr     error
	GetErr       error
	AddErr       error
	CountErr     error
	IncrementErr error

	// QueryHook runs before each Query; a non-nil error fails the call.
	QueryHook func(ctx context.Context, q store.Query) error
}

// GetCall records parameters passed to Get
type GetCall struct {
	Collection string
	ID         string
}

// AddCall records parameters passed to Add
type AddCall struct {
	Collection string
	Fields     map[string]any
	ID         string
}

// IncrementCall records parameters passed to Increment
type IncrementCall struct {
	Collection string
	ID         string
	Field      string
	Delta      int
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{MemoryStore: store.NewMemoryStore()}
}

func (m *MockDocumentStore) Query(ctx context.Context, q store.Query) (store.Page, error) {
	m.mu.Lock()
	m.QueryCalls = append(m.QueryCalls, q)
	hook, err := m.QueryHook, m.QueryErr
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, q); err != nil {
			return store.Page{}, err
		}
	}
	if err != nil {
		return store.Page{}, err
	}
	return m.MemoryStore.Query(ctx, q)
}

func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, GetCall{Collection: collection, ID: id})
	err := m.GetErr
	m.mu.Unlock()

	if err != nil {
		return store.Document{}, err
	}
	return m.MemoryStore.Get(ctx, collection, id)
}

func (m *MockDocumentStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	m.mu.Lock()
	err := m.AddErr
	m.mu.Unlock()

	var id string
	if err == nil {
		id, err = m.MemoryStore.Add(ctx, collection, fields)
	}

	m.mu.Lock()
	m.AddCalls = append(m.AddCalls, AddCall{Collection: collection, Fields: fields, ID: id})
	m.mu.Unlock()
	return id, err
}

func (m *MockDocumentStore) Count(ctx context.Context, collection string) (int, error) {
	m.mu.Lock()
	m.CountCalls = append(m.CountCalls, collection)
	err := m.CountErr
	m.mu.Unlock()

	if err != nil {
		return 0, err
	}
	return m.MemoryStore.Count(ctx, collection)
}

func (m *MockDocumentStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	m.mu.Lock()
	m.IncrementCalls = append(m.IncrementCalls, IncrementCall{Collection: collection, ID: id, Field: field, Delta: delta})
	err := m.IncrementErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.MemoryStore.Increment(ctx, collection, id, field, delta)
}

// QueryCount returns how many queries were issued
func (m *MockDocumentStore) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.QueryCalls)
}

// Reset clears recorded calls and injected errors
func (m *MockDocumentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls = nil
	m.GetCalls = nil
	m.AddCalls = nil
	m.CountCalls = nil
	m.IncrementCalls = nil
	m.QueryErr, m.GetErr, m.AddErr, m.CountErr, m.IncrementErr = nil, nil, nil, nil, nil
}
