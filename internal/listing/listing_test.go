package listing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type item struct {
	ID   string
	Name string
}

func itemKey(i item) string { return i.ID }

func decodeItem(d store.Document) item {
	name, _ := d.Fields["name"].(string)
	return item{ID: d.ID, Name: name}
}

// storeSource pages a memory store collection ordered by name.
func storeSource(s store.DocumentStore, pageSize int, calls *int32) Source[item] {
	return func(ctx context.Context, after *store.Cursor) (Page[item], error) {
		atomic.AddInt32(calls, 1)
		page, err := s.Query(ctx, store.Query{
			Collection: store.CollectionProducts,
			Filters:    []store.Filter{store.Eq("category", "Textiles")},
			OrderBy:    store.Asc("name"),
			Limit:      pageSize,
			StartAfter: after,
		})
		if err != nil {
			return Page[item]{}, err
		}
		return Collect(page, decodeItem), nil
	}
}

func newTestStore(n int) *store.MemoryStore {
	s := store.NewMemoryStore()
	for i := 0; i < n; i++ {
		s.Put(store.CollectionProducts, fmt.Sprintf("p%02d", i), map[string]any{
			"name":     fmt.Sprintf("Textile %02d", i),
			"category": "Textiles",
		})
	}
	return s
}

// ============================================
// Pagination Tests
// ============================================

func TestListing_TwentyFiveItemsInPagesOfTen(t *testing.T) {
	var calls int32
	l := New(storeSource(newTestStore(25), 10, &calls), itemKey, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	assert.Len(t, l.Items(), 10)
	assert.True(t, l.HasMore())

	issued, err := l.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Len(t, l.Items(), 20)
	assert.True(t, l.HasMore())

	issued, err = l.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Len(t, l.Items(), 25)
	assert.False(t, l.HasMore())
	assert.Equal(t, StateExhausted, l.State())

	issued, err = l.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// monotonic: earlier items keep their positions
	items := l.Items()
	for i, it := range items {
		assert.Equal(t, fmt.Sprintf("p%02d", i), it.ID)
	}
}

func TestListing_ExactMultipleCostsOneEmptyFetch(t *testing.T) {
	var calls int32
	l := New(storeSource(newTestStore(20), 10, &calls), itemKey, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	_, err := l.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, l.HasMore())

	issued, err := l.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Len(t, l.Items(), 20)
	assert.False(t, l.HasMore())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestListing_LoadMoreBeforeLoadIsNoop(t *testing.T) {
	var calls int32
	l := New(storeSource(newTestStore(5), 10, &calls), itemKey, zaptest.NewLogger(t))

	issued, err := l.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, issued)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, StateEmpty, l.State())
}

func TestListing_LoadReplacesItems(t *testing.T) {
	var calls int32
	l := New(storeSource(newTestStore(15), 10, &calls), itemKey, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, l.Load(ctx))
	_, err := l.LoadMore(ctx)
	require.NoError(t, err)
	require.Len(t, l.Items(), 15)

	require.NoError(t, l.Load(ctx))
	assert.Len(t, l.Items(), 10)
	assert.True(t, l.HasMore())
}

func TestListing_DropsBoundaryDuplicates(t *testing.T) {
	pages := []Page[item]{
		{Items: []item{{ID: "a"}, {ID: "b"}}, Next: &store.Cursor{}},
		{Items: []item{{ID: "b"}, {ID: "c"}}},
	}
	var n int
	source := func(ctx context.Context, after *store.Cursor) (Page[item], error) {
		p := pages[n]
		n++
		return p, nil
	}

	l := New(source, itemKey, zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))
	_, err := l.LoadMore(ctx)
	require.NoError(t, err)

	assert.Equal(t, []item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, l.Items())
	assert.False(t, l.HasMore())
}

// ============================================
// Failure and Lifecycle Tests
// ============================================

func TestListing_FailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("store unavailable")
	fail := false
	var calls int32
	inner := storeSource(newTestStore(25), 10, &calls)
	source := func(ctx context.Context, after *store.Cursor) (Page[item], error) {
		if fail {
			return Page[item]{}, boom
		}
		return inner(ctx, after)
	}

	l := New(source, itemKey, zaptest.NewLogger(t))
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))
	cursor := l.Cursor()

	fail = true
	issued, err := l.LoadMore(ctx)
	assert.True(t, issued)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, l.Items(), 10)
	assert.True(t, l.HasMore())
	assert.Same(t, cursor, l.Cursor())
	assert.False(t, l.Loading())

	fail = false
	_, err = l.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, l.Items(), 20)
}

func TestListing_LoadingOnlyWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	source := func(ctx context.Context, after *store.Cursor) (Page[item], error) {
		close(started)
		<-release
		return Page[item]{Items: []item{{ID: "a"}}}, nil
	}

	l := New(source, itemKey, zaptest.NewLogger(t))
	assert.False(t, l.Loading())

	done := make(chan error)
	go func() { done <- l.Load(context.Background()) }()

	<-started
	assert.True(t, l.Loading())

	// no second fetch while one is in flight
	issued, err := l.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, issued)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, l.Loading())
	assert.Len(t, l.Items(), 1)
}

func TestListing_CloseDiscardsLateResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	source := func(ctx context.Context, after *store.Cursor) (Page[item], error) {
		close(started)
		<-release
		return Page[item]{Items: []item{{ID: "late"}}}, nil
	}

	l := New(source, itemKey, zaptest.NewLogger(t))
	done := make(chan error)
	go func() { done <- l.Load(context.Background()) }()

	<-started
	l.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Empty(t, l.Items())
	assert.False(t, l.Loading())

	assert.ErrorIs(t, l.Load(context.Background()), ErrClosed)
}

// ============================================
// FetchPage Tests
// ============================================

func TestFetchPage_ResumesFromToken(t *testing.T) {
	var calls int32
	source := storeSource(newTestStore(12), 5, &calls)
	ctx := context.Background()

	first, err := FetchPage(ctx, source, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 5)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := FetchPage(ctx, source, first.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "p05", second.Items[0].ID)

	third, err := FetchPage(ctx, source, second.NextCursor)
	require.NoError(t, err)
	assert.Len(t, third.Items, 2)
	assert.False(t, third.HasMore)
	assert.Empty(t, third.NextCursor)
}

func TestFetchPage_BadToken(t *testing.T) {
	var calls int32
	_, err := FetchPage(context.Background(), storeSource(newTestStore(1), 5, &calls), "%%%")
	assert.ErrorIs(t, err, store.ErrInvalidCursor)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFetchPage_EmptyResultHasEmptySlice(t *testing.T) {
	var calls int32
	res, err := FetchPage(context.Background(), storeSource(store.NewMemoryStore(), 5, &calls), "")
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}
