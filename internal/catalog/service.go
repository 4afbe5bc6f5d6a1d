// Package catalog builds the per-view store queries and decodes their results.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/listing"
	"github.com/example/supermall/internal/logging"
	"github.com/example/supermall/internal/metrics"
	"github.com/example/supermall/internal/readmodel"
	"go.uber.org/zap"
)

const moduleName = "Catalog"

// Options tunes optional catalog behaviour
type Options struct {
	// ApplyShopCategory turns the shop listing category chip into a filter.
	ApplyShopCategory bool
	Now               func() time.Time
}

type Service struct {
	store             store.DocumentStore
	logger            *zap.Logger
	applyShopCategory bool
	now               func() time.Time
}

func NewService(st store.DocumentStore, logger *zap.Logger, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:             st,
		logger:            logging.Module(logger, moduleName),
		applyShopCategory: opts.ApplyShopCategory,
		now:               now,
	}
}

// ShopFilter carries the shop listing controls
type ShopFilter struct {
	Category string
	Search   string
}

// ShopSource pages active shops by name
func (s *Service) ShopSource(f ShopFilter) listing.Source[readmodel.Shop] {
	return func(ctx context.Context, after *store.Cursor) (listing.Page[readmodel.Shop], error) {
		log := s.log(ctx)
		if f.Search != "" {
			// search is accepted but not applied
			log.Info("shop search term ignored", zap.String("search", f.Search))
		}
		category := ""
		if f.Category != "" {
			if s.applyShopCategory {
				category = f.Category
			} else {
				log.Info("shop category chip not applied", zap.String("category", f.Category))
			}
		}

		q := shopsQuery(category)
		q.StartAfter = after
		page, err := s.query(ctx, "shops", q)
		if err != nil {
			return listing.Page[readmodel.Shop]{}, err
		}
		log.Debug("fetched shops", zap.Int("count", len(page.Documents)), zap.Bool("has_more", page.Next != nil))
		return listing.Collect(page, readmodel.DecodeShop), nil
	}
}

// MerchantProductSource pages a merchant's products, newest first
func (s *Service) MerchantProductSource(scope MerchantScope, search string) listing.Source[readmodel.Product] {
	return func(ctx context.Context, after *store.Cursor) (listing.Page[readmodel.Product], error) {
		if search != "" {
			s.log(ctx).Info("product search term ignored", zap.String("search", search))
		}
		q := merchantProductsQuery(scope)
		q.StartAfter = after
		page, err := s.query(ctx, "merchant_products", q)
		if err != nil {
			return listing.Page[readmodel.Product]{}, err
		}
		return listing.Collect(page, readmodel.DecodeProduct), nil
	}
}

// MerchantOfferSource pages a merchant's offers, newest first
func (s *Service) MerchantOfferSource(scope MerchantScope) listing.Source[readmodel.Offer] {
	return func(ctx context.Context, after *store.Cursor) (listing.Page[readmodel.Offer], error) {
		q := merchantOffersQuery(scope)
		q.StartAfter = after
		page, err := s.query(ctx, "merchant_offers", q)
		if err != nil {
			return listing.Page[readmodel.Offer]{}, err
		}
		return listing.Collect(page, readmodel.DecodeOffer), nil
	}
}

// CompareProductSource pages active products of one category
func (s *Service) CompareProductSource(category string) listing.Source[readmodel.Product] {
	return func(ctx context.Context, after *store.Cursor) (listing.Page[readmodel.Product], error) {
		q := compareProductsQuery(category)
		q.StartAfter = after
		page, err := s.query(ctx, "compare_products", q)
		if err != nil {
			return listing.Page[readmodel.Product]{}, err
		}
		return listing.Collect(page, readmodel.DecodeProduct), nil
	}
}

// Shop returns one shop or ErrNotFound
func (s *Service) Shop(ctx context.Context, id string) (readmodel.Shop, error) {
	doc, err := s.get(ctx, "shop", store.CollectionShops, id)
	if err != nil {
		return readmodel.Shop{}, err
	}
	return readmodel.DecodeShop(doc), nil
}

// Product returns one product or ErrNotFound
func (s *Service) Product(ctx context.Context, id string) (readmodel.Product, error) {
	doc, err := s.get(ctx, "product", store.CollectionProducts, id)
	if err != nil {
		return readmodel.Product{}, err
	}
	return readmodel.DecodeProduct(doc), nil
}

// ShopProducts returns the active product preview of a shop
func (s *Service) ShopProducts(ctx context.Context, shopID string) ([]readmodel.Product, error) {
	page, err := s.query(ctx, "shop_products", shopProductPreviewQuery(shopID))
	if err != nil {
		return nil, err
	}
	return listing.Collect(page, readmodel.DecodeProduct).Items, nil
}

// ShopOffers returns active offers of a shop that have not ended
func (s *Service) ShopOffers(ctx context.Context, shopID string) ([]readmodel.Offer, error) {
	page, err := s.query(ctx, "shop_offers", shopOfferPreviewQuery(shopID, s.now().UTC()))
	if err != nil {
		return nil, err
	}
	return listing.Collect(page, readmodel.DecodeOffer).Items, nil
}

// ShopDetail is the shop page: the shop, then its products, then its offers
type ShopDetail struct {
	Shop     readmodel.Shop      `json:"shop"`
	Products []readmodel.Product `json:"products"`
	Offers   []readmodel.Offer   `json:"offers"`
}

// ShopDetail fetches the three parts strictly in order; a failure stops
// the later fetches.
func (s *Service) ShopDetail(ctx context.Context, id string) (ShopDetail, error) {
	shop, err := s.Shop(ctx, id)
	if err != nil {
		return ShopDetail{}, err
	}
	products, err := s.ShopProducts(ctx, id)
	if err != nil {
		return ShopDetail{}, err
	}
	offers, err := s.ShopOffers(ctx, id)
	if err != nil {
		return ShopDetail{}, err
	}
	return ShopDetail{Shop: shop.WithDetailCover(), Products: products, Offers: offers}, nil
}

// RecentShops returns the newest shops for the admin view
func (s *Service) RecentShops(ctx context.Context) ([]readmodel.Shop, error) {
	page, err := s.query(ctx, "recent_shops", recentShopsQuery())
	if err != nil {
		return nil, err
	}
	return listing.Collect(page, readmodel.DecodeShop).Items, nil
}

// CategorySample returns up to CategorySampleSize active products
func (s *Service) CategorySample(ctx context.Context) ([]readmodel.Product, error) {
	page, err := s.query(ctx, "category_sample", categorySampleQuery())
	if err != nil {
		return nil, err
	}
	return listing.Collect(page, readmodel.DecodeProduct).Items, nil
}

// MerchantShops returns the shops owned by ownerID
func (s *Service) MerchantShops(ctx context.Context, ownerID string) ([]readmodel.Shop, error) {
	page, err := s.query(ctx, "merchant_shops", merchantShopsQuery(ownerID))
	if err != nil {
		return nil, err
	}
	return listing.Collect(page, readmodel.DecodeShop).Items, nil
}

// UserProfile returns the users document for uid, or ErrNotFound
func (s *Service) UserProfile(ctx context.Context, uid string) (readmodel.UserProfile, error) {
	page, err := s.query(ctx, "user_profile", userProfileQuery(uid))
	if err != nil {
		return readmodel.UserProfile{}, err
	}
	if len(page.Documents) == 0 {
		return readmodel.UserProfile{}, ErrNotFound
	}
	return readmodel.DecodeUserProfile(page.Documents[0]), nil
}

func (s *Service) query(ctx context.Context, op string, q store.Query) (store.Page, error) {
	page, err := s.store.Query(ctx, q)
	if err != nil {
		s.fail(ctx, op, err)
		return store.Page{}, &FetchError{Op: op, Err: err}
	}
	return page, nil
}

func (s *Service) get(ctx context.Context, op, collection, id string) (store.Document, error) {
	doc, err := s.store.Get(ctx, collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Document{}, ErrNotFound
	}
	if err != nil {
		s.fail(ctx, op, err)
		return store.Document{}, &FetchError{Op: op, Err: err}
	}
	return doc, nil
}

func (s *Service) fail(ctx context.Context, op string, err error) {
	metrics.RecordFetchFailure(moduleName, op)
	s.log(ctx).Error("fetch failed", zap.String("op", op), zap.Error(err))
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	id, _ := auth.FromContext(ctx)
	return logging.User(s.logger, id.UserID)
}
