package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Collection names shared by every backend.
const (
	CollectionShops    = "shops"
	CollectionProducts = "products"
	CollectionOffers   = "offers"
	CollectionUsers    = "users"
	CollectionOrders   = "orders"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrInvalidQuery   = errors.New("invalid query")
	ErrCursorMismatch = errors.New("cursor does not belong to this query")
)

// Op is a filter operator understood by every backend.
type Op string

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
)

// Filter is a single field predicate. Filters in a query are ANDed.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// Gte builds a greater-or-equal filter.
func Gte(field string, value any) Filter {
	return Filter{Field: field, Op: OpGreaterOrEqual, Value: value}
}

// Order is a single-field ordering. The document id breaks ties in the same direction.
type Order struct {
	Field string
	Desc  bool
}

// Asc orders by field ascending.
func Asc(field string) *Order { return &Order{Field: field} }

// Desc orders by field descending.
func Desc(field string) *Order { return &Order{Field: field, Desc: true} }

// Query describes one page request against a collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    *Order
	Limit      int
	StartAfter *Cursor
}

// Page is the result of a Query. Next is set only when the page is full.
type Page struct {
	Documents []Document
	Next      *Cursor
}

// Validate rejects queries no backend can serve, including cursors minted
// under a different collection, filter set or ordering.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: collection is required", ErrInvalidQuery)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, q.Limit)
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: filter without field", ErrInvalidQuery)
		}
		if f.Op != OpEqual && f.Op != OpGreaterOrEqual {
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, f.Op)
		}
	}
	if q.OrderBy != nil && q.OrderBy.Field == "" {
		return fmt.Errorf("%w: order without field", ErrInvalidQuery)
	}
	if q.StartAfter != nil && q.StartAfter.scope != q.Scope() {
		return ErrCursorMismatch
	}
	return nil
}

// Scope fingerprints the (collection, filters, ordering) triple. Limit and
// cursor are excluded so a cursor stays valid across pages of one listing.
func (q Query) Scope() string {
	parts := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		parts = append(parts, f.Field+" "+string(f.Op)+" "+scopeValue(f.Value))
	}
	sort.Strings(parts)

	var b strings.Builder
	b.WriteString(q.Collection)
	b.WriteString("|")
	b.WriteString(strings.Join(parts, "&"))
	b.WriteString("|")
	if q.OrderBy != nil {
		b.WriteString(q.OrderBy.Field)
		if q.OrderBy.Desc {
			b.WriteString(" desc")
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:12])
}

func scopeValue(v any) string {
	switch t := v.(type) {
	case time.Time:
		return "t:" + FormatTime(t)
	case nil:
		return "nil"
	}
	if n, ok := toFloat(v); ok {
		return fmt.Sprintf("n:%v", n)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// nextCursor returns the continuation for a page, or nil when the page is not full.
func (q Query) nextCursor(docs []Document) *Cursor {
	if q.Limit <= 0 || len(docs) != q.Limit {
		return nil
	}
	last := docs[len(docs)-1]
	c := &Cursor{scope: q.Scope(), id: last.ID}
	if q.OrderBy != nil {
		c.value = last.Fields[q.OrderBy.Field]
	}
	return c
}
