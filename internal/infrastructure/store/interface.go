package store

import "context"

// DocumentStore is the remote document store every catalog component talks to.
type DocumentStore interface {
	// Query returns one ordered page of matching documents.
	Query(ctx context.Context, q Query) (Page, error)

	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Add inserts a document and returns its generated id. createdAt and
	// updatedAt are stamped by the store when absent.
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int, error)

	// Increment adds delta to a numeric field, creating it at delta when absent.
	Increment(ctx context.Context, collection, id, field string, delta int) error
}
