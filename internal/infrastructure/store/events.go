package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventDocumentAdded = "DocumentAdded"

// Event is published to the event stream after a successful write.
type Event struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	Collection string          `json:"collection"`
	DocumentID string          `json:"document_id"`
	Data       json.RawMessage `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Type names the event for stream headers
func (e Event) Type() string { return e.EventType }

// Fields decodes the event payload.
func (e Event) Fields() (map[string]any, error) {
	fields := make(map[string]any)
	if len(e.Data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// PublishingStore decorates a DocumentStore and announces every Add.
// A failed publish is logged; the write itself has already succeeded.
type PublishingStore struct {
	DocumentStore
	publisher Publisher
	logger    *zap.Logger
}

func NewPublishingStore(inner DocumentStore, publisher Publisher, logger *zap.Logger) *PublishingStore {
	return &PublishingStore{
		DocumentStore: inner,
		publisher:     publisher,
		logger:        logger.With(zap.String("module", "EventStream")),
	}
}

// Add stores the document and publishes a DocumentAdded event keyed by its id
func (s *PublishingStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := s.DocumentStore.Add(ctx, collection, fields)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(normalizeTimes(fields))
	if err != nil {
		s.logger.Warn("encode event payload", zap.String("collection", collection), zap.Error(err))
		return id, nil
	}

	event := Event{
		ID:         uuid.New().String(),
		EventType:  EventDocumentAdded,
		Collection: collection,
		DocumentID: id,
		Data:       data,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, id, event); err != nil {
		s.logger.Error("publish document added",
			zap.String("collection", collection),
			zap.String("document_id", id),
			zap.Error(err),
		)
	}
	return id, nil
}
