package catalog

import (
	"time"

	"github.com/example/supermall/internal/infrastructure/store"
)

// Page sizes per view
const (
	ShopPageSize            = 12
	MerchantProductPageSize = 10
	MerchantOfferPageSize   = 20
	ShopProductPreviewSize  = 8
	ShopOfferPreviewSize    = 5
	RecentShopsSize         = 5
	CategorySampleSize      = 100
	CompareProductsSize     = 20
	MerchantShopsSize       = 50
)

// MerchantScope selects a merchant's documents: by shop when ShopID is set,
// otherwise by owner.
type MerchantScope struct {
	ShopID  string
	OwnerID string
}

func (m MerchantScope) filter() store.Filter {
	if m.ShopID != "" {
		return store.Eq("shopId", m.ShopID)
	}
	return store.Eq("ownerId", m.OwnerID)
}

func shopsQuery(category string) store.Query {
	q := store.Query{
		Collection: store.CollectionShops,
		Filters:    []store.Filter{store.Eq("isActive", true)},
		OrderBy:    store.Asc("name"),
		Limit:      ShopPageSize,
	}
	if category != "" {
		q.Filters = append(q.Filters, store.Eq("category", category))
	}
	return q
}

func merchantProductsQuery(scope MerchantScope) store.Query {
	return store.Query{
		Collection: store.CollectionProducts,
		Filters:    []store.Filter{scope.filter()},
		OrderBy:    store.Desc(store.FieldCreatedAt),
		Limit:      MerchantProductPageSize,
	}
}

func merchantOffersQuery(scope MerchantScope) store.Query {
	return store.Query{
		Collection: store.CollectionOffers,
		Filters:    []store.Filter{scope.filter()},
		OrderBy:    store.Desc(store.FieldCreatedAt),
		Limit:      MerchantOfferPageSize,
	}
}

func shopProductPreviewQuery(shopID string) store.Query {
	return store.Query{
		Collection: store.CollectionProducts,
		Filters:    []store.Filter{store.Eq("shopId", shopID), store.Eq("isActive", true)},
		Limit:      ShopProductPreviewSize,
	}
}

func shopOfferPreviewQuery(shopID string, now time.Time) store.Query {
	return store.Query{
		Collection: store.CollectionOffers,
		Filters: []store.Filter{
			store.Eq("shopId", shopID),
			store.Eq("isActive", true),
			store.Gte("endDate", now),
		},
		Limit: ShopOfferPreviewSize,
	}
}

func recentShopsQuery() store.Query {
	return store.Query{
		Collection: store.CollectionShops,
		OrderBy:    store.Desc(store.FieldCreatedAt),
		Limit:      RecentShopsSize,
	}
}

func categorySampleQuery() store.Query {
	return store.Query{
		Collection: store.CollectionProducts,
		Filters:    []store.Filter{store.Eq("isActive", true)},
		Limit:      CategorySampleSize,
	}
}

func compareProductsQuery(category string) store.Query {
	return store.Query{
		Collection: store.CollectionProducts,
		Filters:    []store.Filter{store.Eq("category", category), store.Eq("isActive", true)},
		Limit:      CompareProductsSize,
	}
}

func merchantShopsQuery(ownerID string) store.Query {
	return store.Query{
		Collection: store.CollectionShops,
		Filters:    []store.Filter{store.Eq("ownerId", ownerID)},
		Limit:      MerchantShopsSize,
	}
}

func userProfileQuery(uid string) store.Query {
	return store.Query{
		Collection: store.CollectionUsers,
		Filters:    []store.Filter{store.Eq("uid", uid)},
		Limit:      1,
	}
}
