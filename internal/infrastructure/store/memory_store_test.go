package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore() *MemoryStore {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewMemoryStore().WithClock(func() time.Time { return fixed })
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

// ============================================
// Query Tests
// ============================================

func TestMemoryStore_Query_FiltersAndOrder(t *testing.T) {
	s := newTestMemoryStore()
	s.Put(CollectionShops, "s1", map[string]any{"name": "Cotton House", "isActive": true})
	s.Put(CollectionShops, "s2", map[string]any{"name": "Amber Crafts", "isActive": true})
	s.Put(CollectionShops, "s3", map[string]any{"name": "Brass Works", "isActive": false})
	s.Put(CollectionShops, "s4", map[string]any{"isActive": true})

	page, err := s.Query(context.Background(), Query{
		Collection: CollectionShops,
		Filters:    []Filter{Eq("isActive", true)},
		OrderBy:    Asc("name"),
		Limit:      12,
	})
	require.NoError(t, err)

	// s4 has no name and is excluded by the ordering
	assert.Equal(t, []string{"s2", "s1"}, ids(page.Documents))
	assert.Nil(t, page.Next)
}

func TestMemoryStore_Query_DescendingWithTies(t *testing.T) {
	s := newTestMemoryStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Put(CollectionProducts, "a", map[string]any{"createdAt": at})
	s.Put(CollectionProducts, "b", map[string]any{"createdAt": at})
	s.Put(CollectionProducts, "c", map[string]any{"createdAt": at.Add(time.Hour)})

	page, err := s.Query(context.Background(), Query{
		Collection: CollectionProducts,
		OrderBy:    Desc("createdAt"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(page.Documents))
}

func TestMemoryStore_Query_MixedKindsOrderByKindRank(t *testing.T) {
	s := newTestMemoryStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Put(CollectionShops, "s1", map[string]any{"name": "b"})
	s.Put(CollectionShops, "s2", map[string]any{"name": 3})
	s.Put(CollectionShops, "s3", map[string]any{"name": "a"})
	s.Put(CollectionShops, "s4", map[string]any{"name": 1.5})
	s.Put(CollectionShops, "s5", map[string]any{"name": true})
	s.Put(CollectionShops, "s6", map[string]any{"name": at})

	q := Query{Collection: CollectionShops, OrderBy: Asc("name"), Limit: 2}

	var got []string
	for {
		page, err := s.Query(context.Background(), q)
		require.NoError(t, err)
		got = append(got, ids(page.Documents)...)
		if page.Next == nil {
			break
		}
		q.StartAfter = page.Next
	}

	// bool, numbers, timestamp, strings
	assert.Equal(t, []string{"s5", "s4", "s2", "s6", "s3", "s1"}, got)
}

func TestOrderValues_Transitive(t *testing.T) {
	values := []any{nil, false, true, -1, 2.5, 10, time.Unix(0, 0).UTC(), "", "a", "b", map[string]any{}}
	for i := range values {
		for j := range values {
			got := orderValues(values[i], values[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%v vs %v", values[i], values[j])
			case i > j:
				assert.Equal(t, 1, got, "%v vs %v", values[i], values[j])
			default:
				assert.Equal(t, 0, got, "%v vs %v", values[i], values[j])
			}
		}
	}
}

func TestMemoryStore_Query_GreaterOrEqual(t *testing.T) {
	s := newTestMemoryStore()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.Put(CollectionOffers, "past", map[string]any{"endDate": now.Add(-time.Hour)})
	s.Put(CollectionOffers, "edge", map[string]any{"endDate": now})
	s.Put(CollectionOffers, "future", map[string]any{"endDate": now.Add(time.Hour)})

	page, err := s.Query(context.Background(), Query{
		Collection: CollectionOffers,
		Filters:    []Filter{Gte("endDate", now)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"edge", "future"}, ids(page.Documents))
}

func TestMemoryStore_Query_PagesAreDisjointAndComplete(t *testing.T) {
	s := newTestMemoryStore()
	for i := 0; i < 25; i++ {
		s.Put(CollectionProducts, fmt.Sprintf("p%02d", i), map[string]any{
			"category": "Textiles",
			"name":     fmt.Sprintf("Item %02d", i%7),
		})
	}

	q := Query{
		Collection: CollectionProducts,
		Filters:    []Filter{Eq("category", "Textiles")},
		OrderBy:    Asc("name"),
		Limit:      10,
	}

	seen := map[string]bool{}
	var sizes []int
	for {
		page, err := s.Query(context.Background(), q)
		require.NoError(t, err)
		sizes = append(sizes, len(page.Documents))
		for _, d := range page.Documents {
			assert.False(t, seen[d.ID], "duplicate %s", d.ID)
			seen[d.ID] = true
		}
		if page.Next == nil {
			break
		}
		q.StartAfter = page.Next
	}

	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Len(t, seen, 25)
}

func TestMemoryStore_Query_ExactMultipleYieldsEmptyLastPage(t *testing.T) {
	s := newTestMemoryStore()
	for i := 0; i < 10; i++ {
		s.Put(CollectionShops, fmt.Sprintf("s%d", i), map[string]any{"name": fmt.Sprintf("Shop %d", i)})
	}

	q := Query{Collection: CollectionShops, OrderBy: Asc("name"), Limit: 5}
	first, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, first.Next)

	q.StartAfter = first.Next
	second, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, second.Next)

	q.StartAfter = second.Next
	third, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, third.Documents)
	assert.Nil(t, third.Next)
}

func TestMemoryStore_Query_UnorderedCursorUsesID(t *testing.T) {
	s := newTestMemoryStore()
	for _, id := range []string{"c", "a", "b", "d"} {
		s.Put(CollectionProducts, id, map[string]any{"isActive": true})
	}

	q := Query{Collection: CollectionProducts, Filters: []Filter{Eq("isActive", true)}, Limit: 2}
	first, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(first.Documents))

	q.StartAfter = first.Next
	second, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, ids(second.Documents))
}

func TestMemoryStore_Query_CursorFromOtherScopeRejected(t *testing.T) {
	s := newTestMemoryStore()
	s.Put(CollectionShops, "s1", map[string]any{"name": "A", "isActive": true})

	q := Query{Collection: CollectionShops, OrderBy: Asc("name"), Limit: 1}
	page, err := s.Query(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, page.Next)

	other := Query{
		Collection: CollectionShops,
		Filters:    []Filter{Eq("isActive", true)},
		OrderBy:    Asc("name"),
		Limit:      1,
		StartAfter: page.Next,
	}
	_, err = s.Query(context.Background(), other)
	assert.ErrorIs(t, err, ErrCursorMismatch)
}

func TestMemoryStore_Query_InvalidOperator(t *testing.T) {
	s := newTestMemoryStore()
	_, err := s.Query(context.Background(), Query{
		Collection: CollectionShops,
		Filters:    []Filter{{Field: "name", Op: "~="}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestMemoryStore_Query_CancelledContext(t *testing.T) {
	s := newTestMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, Query{Collection: CollectionShops})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_Query_ReturnsCopies(t *testing.T) {
	s := newTestMemoryStore()
	s.Put(CollectionProducts, "p1", map[string]any{"features": map[string]any{"color": "red"}})

	page, err := s.Query(context.Background(), Query{Collection: CollectionProducts})
	require.NoError(t, err)
	page.Documents[0].Fields["features"].(map[string]any)["color"] = "blue"

	doc, err := s.Get(context.Background(), CollectionProducts, "p1")
	require.NoError(t, err)
	assert.Equal(t, "red", doc.Fields["features"].(map[string]any)["color"])
}

// ============================================
// Write Tests
// ============================================

func TestMemoryStore_Add_StampsTimestamps(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	id, err := s.Add(ctx, CollectionShops, map[string]any{"name": "Loom"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	doc, err := s.Get(ctx, CollectionShops, id)
	require.NoError(t, err)
	assert.Equal(t, "Loom", doc.Fields["name"])
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), doc.Fields[FieldCreatedAt])
	assert.Equal(t, doc.Fields[FieldCreatedAt], doc.Fields[FieldUpdatedAt])
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	s := newTestMemoryStore()
	_, err := s.Get(context.Background(), CollectionShops, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CountAndIncrement(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	s.Put(CollectionShops, "s1", map[string]any{"productCount": 2})
	s.Put(CollectionShops, "s2", map[string]any{})

	n, err := s.Count(ctx, CollectionShops)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Increment(ctx, CollectionShops, "s1", "productCount", 1))
	require.NoError(t, s.Increment(ctx, CollectionShops, "s2", "offerCount", 1))

	s1, _ := s.Get(ctx, CollectionShops, "s1")
	s2, _ := s.Get(ctx, CollectionShops, "s2")
	assert.Equal(t, 3, s1.Fields["productCount"])
	assert.Equal(t, 1, s2.Fields["offerCount"])

	assert.ErrorIs(t, s.Increment(ctx, CollectionShops, "nope", "productCount", 1), ErrNotFound)
}
