package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/domain"
	"github.com/example/supermall/internal/infrastructure/objectstore"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/infrastructure/store/mocks"
	"github.com/example/supermall/internal/readmodel"
	"github.com/example/supermall/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var owner = auth.Identity{UserID: "u1", Email: "owner@example.com"}

func newTestService(t *testing.T) (*Service, *mocks.MockDocumentStore, *objectstore.Memory) {
	st := mocks.NewMockDocumentStore()
	st.Put(store.CollectionShops, "s1", map[string]any{"name": "Kerala Looms", "ownerId": "u1"})
	st.Put(store.CollectionShops, "s2", map[string]any{"name": "Brass Works", "ownerId": "u2"})

	objects := objectstore.NewMemory("http://cdn.test")
	svc := NewService(st, objects, validation.New(), zaptest.NewLogger(t)).
		WithClock(func() time.Time { return time.UnixMilli(1700000000000) })
	return svc, st, objects
}

func validProduct() CreateProduct {
	var features readmodel.Features
	features.Set("color", readmodel.TextFeature("red"))
	features.Set("handmade", readmodel.BoolFeature(true))

	return CreateProduct{
		ShopID:      "s1",
		Name:        "Shawl",
		Description: "Wool shawl",
		Price:       49.5,
		Category:    "Textiles",
		Stock:       3,
		Features:    features,
	}
}

// ============================================
// Create Product Tests
// ============================================

func TestService_Create_Success(t *testing.T) {
	svc, st, objects := newTestService(t)

	image := &domain.Upload{Filename: "photos/red shawl.png", ContentType: "image/png", Data: []byte("png")}
	p, err := svc.Create(context.Background(), owner, validProduct(), image)
	require.NoError(t, err)

	assert.Equal(t, "Kerala Looms", p.ShopName)
	assert.Equal(t, "http://cdn.test/products/s1/1700000000000-red_shawl.png", p.ImageURL)
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{"color", "handmade"}, p.Features.Keys())

	_, _, ok := objects.Object("products/s1/1700000000000-red_shawl.png")
	assert.True(t, ok)

	require.Len(t, st.AddCalls, 1)
	assert.Equal(t, store.CollectionProducts, st.AddCalls[0].Collection)
	assert.Equal(t, map[string]any{"color": "red", "handmade": true}, st.AddCalls[0].Fields["features"])
}

func TestService_Create_ZeroPriceAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	cmd := validProduct()
	cmd.Price = 0
	cmd.Stock = 0
	p, err := svc.Create(context.Background(), owner, cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, readmodel.PlaceholderProduct, p.ImageURL)
}

func TestService_Create_NegativeValuesRejected(t *testing.T) {
	svc, st, _ := newTestService(t)

	cmd := validProduct()
	cmd.Price = -1
	cmd.Stock = -2
	_, err := svc.Create(context.Background(), owner, cmd, nil)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	fields := []string{verrs[0].Field, verrs[1].Field}
	assert.ElementsMatch(t, []string{"price", "stock"}, fields)
	assert.Empty(t, st.AddCalls)
}

func TestService_Create_ShopNotFound(t *testing.T) {
	svc, st, _ := newTestService(t)

	cmd := validProduct()
	cmd.ShopID = "missing"
	_, err := svc.Create(context.Background(), owner, cmd, nil)

	assert.ErrorIs(t, err, domain.ErrShopNotFound)
	assert.Empty(t, st.AddCalls)
}

func TestService_Create_NotOwner(t *testing.T) {
	svc, st, objects := newTestService(t)

	cmd := validProduct()
	cmd.ShopID = "s2"
	image := &domain.Upload{Filename: "x.png", Data: []byte("png")}
	_, err := svc.Create(context.Background(), owner, cmd, image)

	assert.ErrorIs(t, err, domain.ErrNotShopOwner)
	assert.Empty(t, st.AddCalls)
	_, _, uploaded := objects.Object("products/s2/1700000000000-x.png")
	assert.False(t, uploaded)
}

func TestService_Create_ShopReadFailure(t *testing.T) {
	svc, st, _ := newTestService(t)
	st.GetErr = errors.New("timeout")

	_, err := svc.Create(context.Background(), owner, validProduct(), nil)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)
}
