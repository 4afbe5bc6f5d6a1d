package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestPublishingStore(t *testing.T) (*store.PublishingStore, *mocks.MockDocumentStore, *mocks.MockPublisher) {
	inner := mocks.NewMockDocumentStore()
	pub := mocks.NewMockPublisher()
	return store.NewPublishingStore(inner, pub, zaptest.NewLogger(t)), inner, pub
}

func TestPublishingStore_AddPublishesEvent(t *testing.T) {
	s, inner, pub := newTestPublishingStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, store.CollectionProducts, map[string]any{"shopId": "s1", "name": "Shawl"})
	require.NoError(t, err)

	calls := pub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, id, calls[0].Key)

	event, ok := calls[0].Event.(store.Event)
	require.True(t, ok)
	assert.Equal(t, store.EventDocumentAdded, event.EventType)
	assert.Equal(t, store.CollectionProducts, event.Collection)
	assert.Equal(t, id, event.DocumentID)

	fields, err := event.Fields()
	require.NoError(t, err)
	assert.Equal(t, "s1", fields["shopId"])

	require.Len(t, inner.AddCalls, 1)
}

func TestPublishingStore_PublishFailureDoesNotFailWrite(t *testing.T) {
	s, inner, pub := newTestPublishingStore(t)
	pub.PublishErr = errors.New("broker down")

	id, err := s.Add(context.Background(), store.CollectionShops, map[string]any{"name": "Loom"})
	require.NoError(t, err)

	doc, err := inner.Get(context.Background(), store.CollectionShops, id)
	require.NoError(t, err)
	assert.Equal(t, "Loom", doc.Fields["name"])
}

func TestPublishingStore_AddFailureSkipsPublish(t *testing.T) {
	s, inner, pub := newTestPublishingStore(t)
	inner.AddErr = errors.New("write refused")

	_, err := s.Add(context.Background(), store.CollectionShops, map[string]any{"name": "Loom"})
	assert.Error(t, err)
	assert.Empty(t, pub.Calls())
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(store.Event{
		ID:         "e1",
		EventType:  store.EventDocumentAdded,
		Collection: store.CollectionOffers,
		DocumentID: "o1",
		Data:       json.RawMessage(`{"shopId":"s1"}`),
	})
	require.NoError(t, err)

	var event store.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	fields, err := event.Fields()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"shopId": "s1"}, fields)
}

func TestEvent_TypeNamesEvent(t *testing.T) {
	assert.Equal(t, store.EventDocumentAdded, store.Event{EventType: store.EventDocumentAdded}.Type())
}
