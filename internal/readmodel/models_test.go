package readmodel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Decode Tests
// ============================================

func TestDecodeShop_Placeholders(t *testing.T) {
	s := DecodeShop(store.Document{ID: "s1", Fields: map[string]any{
		"name":         "Loom & Co",
		"isActive":     true,
		"productCount": 3,
	}})

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, PlaceholderLogo, s.LogoURL)
	assert.Equal(t, PlaceholderCover, s.CoverURL)
	assert.Equal(t, PlaceholderDetailCover, s.WithDetailCover().CoverURL)
	assert.Equal(t, 3, s.ProductCount)
	assert.True(t, s.IsActive)
}

func TestDecodeShop_KeepsUploadedCover(t *testing.T) {
	s := DecodeShop(store.Document{ID: "s1", Fields: map[string]any{
		"coverUrl": "https://cdn.example.com/cover.png",
	}})
	assert.Equal(t, "https://cdn.example.com/cover.png", s.WithDetailCover().CoverURL)
}

func TestDecodeProduct(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := DecodeProduct(store.Document{ID: "p1", Fields: map[string]any{
		"name":      "Silk Scarf",
		"price":     float64(24.5),
		"stock":     float64(7),
		"category":  "Textiles",
		"createdAt": store.FormatTime(created),
		"features":  map[string]any{"origin": "Kerala", "handmade": false},
	}})

	assert.Equal(t, 24.5, p.Price)
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, PlaceholderProduct, p.ImageURL)
	require.NotNil(t, p.CreatedAt)
	assert.True(t, created.Equal(*p.CreatedAt))
	assert.Equal(t, []string{"handmade", "origin"}, p.Features.Keys())

	b, ok := p.Features.Get("handmade").Bool()
	assert.True(t, ok)
	assert.False(t, b)
}

func TestDecodeUserProfile_Defaults(t *testing.T) {
	u := DecodeUserProfile(store.Document{ID: "u1", Fields: map[string]any{}})
	assert.Equal(t, "u1", u.UID)
	assert.Equal(t, UserTypeCustomer, u.UserType)
	assert.False(t, u.IsAdmin)
}

func TestOffer_CurrentlyValid(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	tests := []struct {
		name  string
		offer Offer
		now   time.Time
		want  bool
	}{
		{"inside window", Offer{IsActive: true, StartDate: start, EndDate: end}, start.Add(time.Hour), true},
		{"at start", Offer{IsActive: true, StartDate: start, EndDate: end}, start, true},
		{"at end", Offer{IsActive: true, StartDate: start, EndDate: end}, end, true},
		{"before", Offer{IsActive: true, StartDate: start, EndDate: end}, start.Add(-time.Second), false},
		{"after", Offer{IsActive: true, StartDate: start, EndDate: end}, end.Add(time.Second), false},
		{"inactive", Offer{StartDate: start, EndDate: end}, start.Add(time.Hour), false},
		{"inverted window", Offer{IsActive: true, StartDate: end, EndDate: start}, start.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.offer.CurrentlyValid(tt.now))
		})
	}
}

// ============================================
// Feature Tests
// ============================================

func TestFeatureValue_AbsentIsNotFalse(t *testing.T) {
	var f Features
	f.Set("handmade", BoolFeature(false))

	present := f.Get("handmade")
	missing := f.Get("color")

	assert.True(t, present.Present())
	assert.Equal(t, FeatureBool, present.Kind())
	assert.False(t, missing.Present())
	assert.Equal(t, FeatureAbsent, missing.Kind())
}

func TestFeatureValue_Text(t *testing.T) {
	assert.Equal(t, "1.5", NumberFeature(1.5).Text())
	assert.Equal(t, "3", NumberFeature(3).Text())
	assert.Equal(t, "Kerala", TextFeature("Kerala").Text())
	assert.Equal(t, "", BoolFeature(true).Text())
}

func TestFeatures_JSONKeepsOrder(t *testing.T) {
	var f Features
	require.NoError(t, json.Unmarshal([]byte(`{"weight": 1.2, "color": "red", "handmade": true}`), &f))
	assert.Equal(t, []string{"weight", "color", "handmade"}, f.Keys())
	assert.Equal(t, NumberFeature(1.2), f.Get("weight"))

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"weight":1.2,"color":"red","handmade":true}`, string(out))
	assert.Equal(t, `{"weight":1.2,"color":"red","handmade":true}`, string(out))
}

func TestFeatures_UnmarshalRejectsNested(t *testing.T) {
	var f Features
	assert.Error(t, json.Unmarshal([]byte(`{"size": {"w": 1}}`), &f))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &f))
}

func TestFeatures_UnmarshalNullSkipsKey(t *testing.T) {
	var f Features
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": "x"}`), &f))
	assert.Equal(t, []string{"b"}, f.Keys())
}

func TestFeatures_Map(t *testing.T) {
	f := FeaturesFromMap(map[string]any{"b": 2, "a": "x"})
	assert.Equal(t, map[string]any{"a": "x", "b": float64(2)}, f.Map())
}

func TestDecodeProduct_StoredFeatureKeysReadBackSorted(t *testing.T) {
	var created Features
	require.NoError(t, json.Unmarshal([]byte(`{"weight": 0.6, "origin": "Kerala", "handmade": false}`), &created))
	require.Equal(t, []string{"weight", "origin", "handmade"}, created.Keys())

	p := DecodeProduct(store.Document{ID: "p1", Fields: map[string]any{"features": created.Map()}})
	assert.Equal(t, []string{"handmade", "origin", "weight"}, p.Features.Keys())
	assert.Equal(t, BoolFeature(false), p.Features.Get("handmade"))
}
