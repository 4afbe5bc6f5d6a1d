package mocks

import (
	"context"
	"sync"
)

// MockPublisher records published events in place of a Kafka producer
type MockPublisher struct {
	mu         sync.Mutex
	PublishErr error
	Published  []PublishCall
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event any
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishCall{Key: key, Event: event})
	return m.PublishErr
}

// Calls returns a snapshot of recorded publishes
func (m *MockPublisher) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishCall, len(m.Published))
	copy(out, m.Published)
	return out
}
