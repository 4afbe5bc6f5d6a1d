package compare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/readmodel"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func product(id, category string, features map[string]any) readmodel.Product {
	return readmodel.Product{
		ID:       id,
		Name:     "Product " + id,
		Category: category,
		Features: readmodel.FeaturesFromMap(features),
	}
}

// ============================================
// Category Discovery Tests
// ============================================

func TestDiscoverCategories(t *testing.T) {
	products := []readmodel.Product{
		product("1", "Textiles", nil),
		product("2", "", nil),
		product("3", "Jewelry", nil),
		product("4", "Textiles", nil),
		product("5", "Pottery", nil),
	}

	got := DiscoverCategories(products)
	if diff := cmp.Diff([]string{"Textiles", "Jewelry", "Pottery"}, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	// idempotent
	assert.Equal(t, got, DiscoverCategories(products))
	assert.Empty(t, DiscoverCategories(nil))
}

// ============================================
// Selection Tests
// ============================================

func TestSelection_CapacityAndToggle(t *testing.T) {
	var s Selection
	a, b, c, d := product("a", "", nil), product("b", "", nil), product("c", "", nil), product("d", "", nil)

	assert.True(t, s.Toggle(a))
	assert.True(t, s.Toggle(b))
	assert.True(t, s.Toggle(c))
	assert.False(t, s.Toggle(d), "fourth product is rejected")
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.Contains("d"))

	// a member is always removable, even when full
	assert.True(t, s.Toggle(b))
	assert.Equal(t, []string{"a", "c"}, idsOf(s.Items()))

	assert.True(t, s.Toggle(d))
	assert.Equal(t, []string{"a", "c", "d"}, idsOf(s.Items()))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSelectIDs_ReportsRejected(t *testing.T) {
	products := []readmodel.Product{
		product("a", "", nil), product("b", "", nil), product("c", "", nil), product("d", "", nil), product("e", "", nil),
	}
	sel, rejected := SelectIDs(products)
	assert.Equal(t, []string{"a", "b", "c"}, idsOf(sel.Items()))
	assert.Equal(t, []string{"d", "e"}, rejected)
}

func idsOf(ps []readmodel.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// ============================================
// Matrix Tests
// ============================================

func featureRows(m Matrix) map[string][]string {
	out := map[string][]string{}
	for _, r := range m.Features {
		for _, c := range r.Cells {
			out[r.Key] = append(out[r.Key], c.String())
		}
	}
	return out
}

func TestBuildMatrix_AbsentIsNotFalse(t *testing.T) {
	p1 := product("p1", "Textiles", map[string]any{"color": "red", "handmade": true})
	p2 := product("p2", "Textiles", map[string]any{"handmade": false, "origin": "Kerala"})

	m := BuildMatrix([]readmodel.Product{p1, p2})

	keys := make([]string, len(m.Features))
	for i, r := range m.Features {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{"color", "handmade", "origin"}, keys)

	want := map[string][]string{
		"color":    {"red", GlyphNA},
		"handmade": {GlyphYes, GlyphNo},
		"origin":   {GlyphNA, "Kerala"},
	}
	if diff := cmp.Diff(want, featureRows(m)); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, CellBool, m.Features[1].Cells[1].Kind)
	assert.Equal(t, CellNotApplicable, m.Features[0].Cells[1].Kind)
}

func TestBuildMatrix_KeyOrderFollowsSelection(t *testing.T) {
	var f1, f2 readmodel.Features
	f1.Set("weight", readmodel.NumberFeature(1.25))
	f1.Set("color", readmodel.TextFeature("blue"))
	f2.Set("size", readmodel.TextFeature("L"))
	f2.Set("weight", readmodel.NumberFeature(2))

	m := BuildMatrix([]readmodel.Product{
		{ID: "1", Features: f1},
		{ID: "2", Features: f2},
	})

	want := map[string][]string{
		"weight": {"1.25", "2"},
		"color":  {"blue", GlyphNA},
		"size":   {GlyphNA, "L"},
	}
	if diff := cmp.Diff(want, featureRows(m)); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "weight", m.Features[0].Key)
	assert.Equal(t, "color", m.Features[1].Key)
	assert.Equal(t, "size", m.Features[2].Key)
}

func TestBuildMatrix_FixedRowsAndEmpty(t *testing.T) {
	m := BuildMatrix([]readmodel.Product{{ID: "1", Price: 12.5, Category: "Pottery"}})
	require.Len(t, m.Fixed, 3)
	assert.Equal(t, "Price", m.Fixed[0].Label)
	assert.Equal(t, "$12.50", m.Fixed[0].Cells[0].String())
	assert.Equal(t, "Pottery", m.Fixed[1].Cells[0].String())
	assert.Equal(t, GlyphNA, m.Fixed[2].Cells[0].String())
	assert.Empty(t, m.Features)

	empty := BuildMatrix(nil)
	assert.Empty(t, empty.Columns)
	assert.Empty(t, empty.Features)
}

func TestBuildMatrix_EmptySelectionEncodesArrays(t *testing.T) {
	raw, err := json.Marshal(BuildMatrix(nil))
	require.NoError(t, err)

	var out struct {
		Columns  []any `json:"columns"`
		Fixed    []struct {
			Label string `json:"label"`
			Cells []any  `json:"cells"`
		} `json:"fixed"`
		Features []any `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotNil(t, out.Columns)
	assert.NotNil(t, out.Features)
	require.Len(t, out.Fixed, 3)
	for _, row := range out.Fixed {
		assert.NotNil(t, row.Cells, row.Label)
	}
	assert.NotContains(t, string(raw), "null")
}

func TestCell_MarshalJSON(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{Cell{Kind: CellNotApplicable}, `{"kind":"n/a"}`},
		{Cell{Kind: CellBool, Bool: false}, `{"kind":"bool","value":false}`},
		{Cell{Kind: CellText, Text: "Kerala"}, `{"kind":"text","value":"Kerala"}`},
	}
	for _, tt := range tests {
		got, err := tt.cell.MarshalJSON()
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(got))
	}
}

func TestRenderText(t *testing.T) {
	m := BuildMatrix([]readmodel.Product{
		product("p1", "Textiles", map[string]any{"handmade": true}),
		product("p2", "Textiles", map[string]any{"handmade": false}),
	})

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, m))
	out := buf.String()
	assert.Contains(t, out, "Product p1")
	assert.Contains(t, out, "handmade")
	assert.Contains(t, out, GlyphYes)
	assert.Contains(t, out, GlyphNo)
}

// ============================================
// Session Tests (end to end over the memory store)
// ============================================

func newTestSession(t *testing.T) (*Session, *store.MemoryStore) {
	st := store.NewMemoryStore()
	for i := 0; i < 25; i++ {
		fields := map[string]any{"category": "Textiles", "isActive": true, "name": fmt.Sprintf("Textile %02d", i)}
		switch i {
		case 0:
			fields["features"] = map[string]any{"color": "red", "handmade": true}
		case 1:
			fields["features"] = map[string]any{"handmade": false, "origin": "Kerala"}
		}
		st.Put(store.CollectionProducts, fmt.Sprintf("t%02d", i), fields)
	}
	st.Put(store.CollectionProducts, "j1", map[string]any{"category": "Jewelry", "isActive": true})

	svc := catalog.NewService(st, zaptest.NewLogger(t), catalog.Options{})
	return NewSession(svc, zaptest.NewLogger(t)), st
}

func TestSession_EndToEnd(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.Open(ctx))
	assert.ElementsMatch(t, []string{"Textiles", "Jewelry"}, s.Categories())
	require.NoError(t, s.SelectCategory(ctx, "Textiles"))

	assert.Len(t, s.Products(), 20)
	assert.True(t, s.HasMore())

	issued, err := s.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, issued)
	assert.Len(t, s.Products(), 25)
	assert.False(t, s.HasMore())

	require.True(t, s.ToggleID("t00"))
	require.True(t, s.ToggleID("t01"))

	want := map[string][]string{
		"color":    {"red", GlyphNA},
		"handmade": {GlyphYes, GlyphNo},
		"origin":   {GlyphNA, "Kerala"},
	}
	if diff := cmp.Diff(want, featureRows(s.Matrix())); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_SelectCategoryClearsSelection(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SelectCategory(ctx, "Textiles"))
	require.True(t, s.ToggleID("t00"))
	require.Len(t, s.Selected(), 1)

	require.NoError(t, s.SelectCategory(ctx, "Jewelry"))
	assert.Empty(t, s.Selected())
	assert.Equal(t, "Jewelry", s.ActiveCategory())
	assert.Equal(t, []string{"j1"}, idsOf(s.Products()))
	assert.False(t, s.ToggleID("t00"), "products of another category cannot be selected")
}

func TestSession_OpenWithoutProducts(t *testing.T) {
	svc := catalog.NewService(store.NewMemoryStore(), zaptest.NewLogger(t), catalog.Options{})
	s := NewSession(svc, zaptest.NewLogger(t))

	require.NoError(t, s.Open(context.Background()))
	assert.Empty(t, s.Categories())
	assert.Equal(t, "", s.ActiveCategory())
	assert.Empty(t, s.Matrix().Columns)
}
