package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_data ON documents USING GIN (data);
`

// PostgresStore keeps every collection in one JSONB documents table.
// Timestamps are stored as TimeLayout strings so jsonb ordering matches time order.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// EnsureSchema creates the documents table when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, documentsSchema); err != nil {
		return fmt.Errorf("create documents schema: %w", err)
	}
	return nil
}

// Query returns one page of matching documents
func (s *PostgresStore) Query(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(); err != nil {
		return Page{}, err
	}

	stmt, args, err := buildPostgresQuery(q)
	if err != nil {
		return Page{}, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return Page{}, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return Page{}, fmt.Errorf("scan %s: %w", q.Collection, err)
		}
		fields, err := decodeJSONFields(raw)
		if err != nil {
			return Page{}, fmt.Errorf("decode %s/%s: %w", q.Collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("query %s: %w", q.Collection, err)
	}

	return Page{Documents: docs, Next: q.nextCursor(docs)}, nil
}

func buildPostgresQuery(q Query) (string, []any, error) {
	var where []string
	args := []any{q.Collection}
	where = append(where, "collection = $1")

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, f := range q.Filters {
		val, err := jsonValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%w: filter %s: %v", ErrInvalidQuery, f.Field, err)
		}
		where = append(where, fmt.Sprintf("data -> %s %s %s::jsonb", arg(f.Field), sqlOp(f.Op), arg(val)))
	}

	var orderBy string
	if o := q.OrderBy; o != nil {
		field := arg(o.Field)
		where = append(where, fmt.Sprintf("data ? %s", field))
		dir, cmp := "ASC", ">"
		if o.Desc {
			dir, cmp = "DESC", "<"
		}
		if c := q.StartAfter; c != nil {
			val, err := jsonValue(c.value)
			if err != nil {
				return "", nil, fmt.Errorf("%w: cursor: %v", ErrInvalidQuery, err)
			}
			where = append(where, fmt.Sprintf("(data -> %s, id) %s (%s::jsonb, %s)", field, cmp, arg(val), arg(c.id)))
		}
		orderBy = fmt.Sprintf("data -> %s %s, id %s", field, dir, dir)
	} else {
		if c := q.StartAfter; c != nil {
			where = append(where, fmt.Sprintf("id > %s", arg(c.id)))
		}
		orderBy = "id ASC"
	}

	stmt := "SELECT id, data FROM documents WHERE " + strings.Join(where, " AND ") + " ORDER BY " + orderBy
	if q.Limit > 0 {
		stmt += " LIMIT " + arg(q.Limit)
	}
	return stmt, args, nil
}

func sqlOp(op Op) string {
	if op == OpGreaterOrEqual {
		return ">="
	}
	return "="
}

// Get retrieves a document by id
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = $1 AND id = $2",
		collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	fields, err := decodeJSONFields(raw)
	if err != nil {
		return Document{}, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// Add inserts a document under a generated id
func (s *PostgresStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	doc := copyFields(fields)
	now := s.now().UTC()
	if _, ok := doc[FieldCreatedAt]; !ok {
		doc[FieldCreatedAt] = now
	}
	if _, ok := doc[FieldUpdatedAt]; !ok {
		doc[FieldUpdatedAt] = now
	}

	raw, err := json.Marshal(normalizeTimes(doc))
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", collection, err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data, created_at) VALUES ($1, $2, $3, $4)",
		collection, id, raw, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Count returns the number of documents in a collection
func (s *PostgresStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = $1",
		collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Increment adds delta to a numeric field
func (s *PostgresStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents
		 SET data = jsonb_set(data, ARRAY[$3::text], to_jsonb(COALESCE((data ->> $3)::numeric, 0) + $4))
		 WHERE collection = $1 AND id = $2`,
		collection, id, field, delta,
	)
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment %s/%s.%s: %w", collection, id, field, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func jsonValue(v any) (string, error) {
	raw, err := json.Marshal(normalizeTimes(v))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// normalizeTimes rewrites time.Time values (at any depth) as TimeLayout strings.
func normalizeTimes(v any) any {
	switch t := v.(type) {
	case time.Time:
		return FormatTime(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeTimes(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeTimes(e)
		}
		return out
	}
	return v
}

func decodeJSONFields(raw []byte) (map[string]any, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
