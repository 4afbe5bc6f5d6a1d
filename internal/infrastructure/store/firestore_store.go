package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the hosted document store used in production.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Query returns one page of matching documents
func (s *FirestoreStore) Query(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}

	fq := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, string(f.Op), f.Value)
	}

	if o := q.OrderBy; o != nil {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(o.Field, dir).OrderBy(firestore.DocumentID, dir)
		if c := q.StartAfter; c != nil {
			fq = fq.StartAfter(c.value, c.id)
		}
	} else if c := q.StartAfter; c != nil {
		fq = fq.OrderBy(firestore.DocumentID, firestore.Asc).StartAfter(c.id)
	}

	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return Page{}, fmt.Errorf("query %s: %w", q.Collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}

	return Page{Documents: docs, Next: q.nextCursor(docs)}, nil
}

// Get retrieves a document by id
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

// Add inserts a document; missing timestamps are set by the server
func (s *FirestoreStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc := copyFields(fields)
	if _, ok := doc[FieldCreatedAt]; !ok {
		doc[FieldCreatedAt] = firestore.ServerTimestamp
	}
	if _, ok := doc[FieldUpdatedAt]; !ok {
		doc[FieldUpdatedAt] = firestore.ServerTimestamp
	}

	ref, _, err := s.client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return ref.ID, nil
}

// Count returns the number of documents in a collection
func (s *FirestoreStore) Count(ctx context.Context, collection string) (int, error) {
	res, err := s.client.Collection(collection).NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("count %s: unexpected aggregation result %T", collection, res["all"])
	}
	return int(v.GetIntegerValue()), nil
}

// Increment adds delta to a numeric field
func (s *FirestoreStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.Increment(delta)},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	return nil
}
