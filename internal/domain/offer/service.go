// Package offer publishes time-limited offers for a merchant's shop.
package offer

import (
	"context"
	"fmt"
	"time"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/domain"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/logging"
	"github.com/example/supermall/internal/readmodel"
	"github.com/example/supermall/internal/validation"
	"go.uber.org/zap"
)

// CreateOffer is the merchant input for a new offer
type CreateOffer struct {
	ShopID      string    `json:"shopId" validate:"notblank"`
	Title       string    `json:"title" validate:"notblank,max=200"`
	Description string    `json:"description"`
	Discount    float64   `json:"discount"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
}

type Service struct {
	store     store.DocumentStore
	validator *validation.Validator
	logger    *zap.Logger
}

func NewService(st store.DocumentStore, v *validation.Validator, logger *zap.Logger) *Service {
	return &Service{
		store:     st,
		validator: v,
		logger:    logging.Module(logger, "Offer"),
	}
}

// Create adds an active offer to a shop the caller owns
func (s *Service) Create(ctx context.Context, owner auth.Identity, cmd CreateOffer) (readmodel.Offer, error) {
	log := logging.User(s.logger, owner.UserID)

	if err := s.validator.Struct(cmd); err != nil {
		log.Info("offer rejected", zap.Error(err))
		return readmodel.Offer{}, err
	}

	shop, err := domain.OwnedShop(ctx, s.store, owner, cmd.ShopID)
	if err != nil {
		log.Warn("shop check failed", zap.String("shop_id", cmd.ShopID), zap.Error(err))
		return readmodel.Offer{}, err
	}

	fields := map[string]any{
		"title":       cmd.Title,
		"description": cmd.Description,
		"discount":    cmd.Discount,
		"startDate":   cmd.StartDate.UTC(),
		"endDate":     cmd.EndDate.UTC(),
		"isActive":    true,
		"shopId":      cmd.ShopID,
		"shopName":    shop.Name,
		"ownerId":     owner.UserID,
	}

	id, err := s.store.Add(ctx, store.CollectionOffers, fields)
	if err != nil {
		log.Error("offer write failed", zap.Error(err))
		return readmodel.Offer{}, fmt.Errorf("%w: add offer: %v", domain.ErrWriteFailed, err)
	}

	log.Info("offer created", zap.String("offer_id", id), zap.String("shop_id", cmd.ShopID))
	return readmodel.DecodeOffer(store.Document{ID: id, Fields: fields}), nil
}
