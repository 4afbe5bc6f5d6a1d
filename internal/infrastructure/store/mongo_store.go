package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps each collection to a MongoDB collection keyed by a string _id.
type MongoStore struct {
	db  *mongo.Database
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, now: time.Now}
}

// ConnectMongo opens and pings a MongoDB client
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo connection uri is empty")
	}

	opts := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetConnectTimeout(5 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// Query returns one page of matching documents
func (s *MongoStore) Query(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}

	filter, sort := buildMongoQuery(q)
	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.db.Collection(q.Collection).Find(ctx, filter, opts)
	if err != nil {
		return Page{}, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return Page{}, fmt.Errorf("decode %s: %w", q.Collection, err)
		}
		docs = append(docs, mongoDocument(raw))
	}
	if err := cur.Err(); err != nil {
		return Page{}, fmt.Errorf("query %s: %w", q.Collection, err)
	}

	return Page{Documents: docs, Next: q.nextCursor(docs)}, nil
}

func buildMongoQuery(q Query) (bson.M, bson.D) {
	and := bson.A{}
	for _, f := range q.Filters {
		if f.Op == OpGreaterOrEqual {
			and = append(and, bson.M{f.Field: bson.M{"$gte": f.Value}})
		} else {
			and = append(and, bson.M{f.Field: f.Value})
		}
	}

	var sort bson.D
	if o := q.OrderBy; o != nil {
		dir, cmp := 1, "$gt"
		if o.Desc {
			dir, cmp = -1, "$lt"
		}
		and = append(and, bson.M{o.Field: bson.M{"$exists": true}})
		if c := q.StartAfter; c != nil {
			and = append(and, bson.M{"$or": bson.A{
				bson.M{o.Field: bson.M{cmp: c.value}},
				bson.M{o.Field: c.value, "_id": bson.M{cmp: c.id}},
			}})
		}
		sort = bson.D{{Key: o.Field, Value: dir}, {Key: "_id", Value: dir}}
	} else {
		if c := q.StartAfter; c != nil {
			and = append(and, bson.M{"_id": bson.M{"$gt": c.id}})
		}
		sort = bson.D{{Key: "_id", Value: 1}}
	}

	if len(and) == 0 {
		return bson.M{}, sort
	}
	return bson.M{"$and": and}, sort
}

// Get retrieves a document by id
func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return mongoDocument(raw), nil
}

// Add inserts a document under a generated id
func (s *MongoStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc := bson.M{}
	for k, v := range copyFields(fields) {
		doc[k] = v
	}
	now := s.now().UTC()
	if _, ok := doc[FieldCreatedAt]; !ok {
		doc[FieldCreatedAt] = now
	}
	if _, ok := doc[FieldUpdatedAt]; !ok {
		doc[FieldUpdatedAt] = now
	}

	id := uuid.New().String()
	doc["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Count returns the number of documents in a collection
func (s *MongoStore) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return int(n), nil
}

// Increment adds delta to a numeric field
func (s *MongoStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mongoDocument(raw bson.M) Document {
	id, _ := raw["_id"].(string)
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = fromBSON(v)
	}
	return Document{ID: id, Fields: fields}
}

// fromBSON converts driver types to the plain Go values the rest of the store uses.
func fromBSON(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromBSON(e)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSON(e)
		}
		return out
	case int32:
		return int(t)
	case int64:
		return int(t)
	}
	return v
}
