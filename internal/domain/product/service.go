// Package product adds products to a merchant's shop.
package product

import (
	"context"
	"fmt"
	"time"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/domain"
	"github.com/example/supermall/internal/infrastructure/objectstore"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/logging"
	"github.com/example/supermall/internal/readmodel"
	"github.com/example/supermall/internal/validation"
	"go.uber.org/zap"
)

// CreateProduct is the merchant input for a new product. The image is
// passed separately.
type CreateProduct struct {
	ShopID      string             `json:"shopId" validate:"notblank"`
	Name        string             `json:"name" validate:"notblank,max=200"`
	Description string             `json:"description" validate:"notblank"`
	Price       float64            `json:"price" validate:"gte=0"`
	Category    string             `json:"category" validate:"notblank"`
	Stock       int                `json:"stock" validate:"gte=0"`
	Features    readmodel.Features `json:"features" validate:"-"`
}

type Service struct {
	store     store.DocumentStore
	uploader  objectstore.Uploader
	validator *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(st store.DocumentStore, up objectstore.Uploader, v *validation.Validator, logger *zap.Logger) *Service {
	return &Service{
		store:     st,
		uploader:  up,
		validator: v,
		logger:    logging.Module(logger, "Product"),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for upload paths
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create adds a product to a shop the caller owns. The shop name is copied
// onto the product so listings need no second read.
func (s *Service) Create(ctx context.Context, owner auth.Identity, cmd CreateProduct, image *domain.Upload) (readmodel.Product, error) {
	log := logging.User(s.logger, owner.UserID)

	if err := s.validator.Struct(cmd); err != nil {
		log.Info("product rejected", zap.Error(err))
		return readmodel.Product{}, err
	}

	shop, err := domain.OwnedShop(ctx, s.store, owner, cmd.ShopID)
	if err != nil {
		log.Warn("shop check failed", zap.String("shop_id", cmd.ShopID), zap.Error(err))
		return readmodel.Product{}, err
	}

	var imageURL string
	if image.Present() {
		path := fmt.Sprintf("products/%s/%d-%s", cmd.ShopID, s.now().UnixMilli(), image.BaseName())
		imageURL, err = s.uploader.Upload(ctx, path, image.ContentType, image.Data)
		if err != nil {
			log.Error("image upload failed", zap.String("path", path), zap.Error(err))
			return readmodel.Product{}, fmt.Errorf("%w: upload %s: %v", domain.ErrWriteFailed, path, err)
		}
	}

	fields := map[string]any{
		"name":        cmd.Name,
		"description": cmd.Description,
		"price":       cmd.Price,
		"category":    cmd.Category,
		"stock":       cmd.Stock,
		"isActive":    true,
		"imageUrl":    imageURL,
		"shopId":      cmd.ShopID,
		"shopName":    shop.Name,
		"ownerId":     owner.UserID,
		"features":    cmd.Features.Map(),
	}

	id, err := s.store.Add(ctx, store.CollectionProducts, fields)
	if err != nil {
		log.Error("product write failed", zap.Error(err))
		return readmodel.Product{}, fmt.Errorf("%w: add product: %v", domain.ErrWriteFailed, err)
	}

	log.Info("product created",
		zap.String("product_id", id),
		zap.String("shop_id", cmd.ShopID),
		zap.Int("features", cmd.Features.Len()),
	)
	return readmodel.DecodeProduct(store.Document{ID: id, Fields: fields}), nil
}
