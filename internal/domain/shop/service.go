// Package shop creates merchant shops.
package shop

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

// CreateShop is the merchant input for a new shop
type CreateShop struct {
	Name        string `json:"name" validate:"notblank,max=120"`
	Description string `json:"description" validate:"notblank"`
	Location    string `json:"location" validate:"notblank"`
	Category    string `json:"category" validate:"notblank"`
	Floor       string `json:"floor"`
	Phone       string `json:"phone"`
	Email       string `json:"email" validate:"omitempty,email"`
	Website     string `json:"website" validate:"omitempty,url"`
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
		logger:    logging.Module(logger, "Shop"),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for upload paths
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates the input, uploads the optional logo and cover, then
// adds the shop owned by the caller. An upload failure aborts the write.
func (s *Service) Create(ctx context.Context, owner auth.Identity, cmd CreateShop, logo, cover *domain.Upload) (readmodel.Shop, error) {
	log := logging.User(s.logger, owner.UserID)

	if err := s.validator.Struct(cmd); err != nil {
		log.Info("shop rejected", zap.Error(err))
		return readmodel.Shop{}, err
	}

	ms := s.now().UnixMilli()
	logoURL, err := s.upload(ctx, fmt.Sprintf("shops/%s/logo-%d", owner.UserID, ms), logo)
	if err != nil {
		log.Error("logo upload failed", zap.Error(err))
		return readmodel.Shop{}, err
	}
	coverURL, err := s.upload(ctx, fmt.Sprintf("shops/%s/cover-%d", owner.UserID, ms), cover)
	if err != nil {
		log.Error("cover upload failed", zap.Error(err))
		return readmodel.Shop{}, err
	}

	fields := map[string]any{
		"name":         cmd.Name,
		"description":  cmd.Description,
		"location":     cmd.Location,
		"category":     cmd.Category,
		"floor":        cmd.Floor,
		"phone":        cmd.Phone,
		"email":        cmd.Email,
		"website":      cmd.Website,
		"logoUrl":      logoURL,
		"coverUrl":     coverURL,
		"ownerId":      owner.UserID,
		"ownerEmail":   owner.Email,
		"isActive":     true,
		"productCount": 0,
		"offerCount":   0,
	}

	id, err := s.store.Add(ctx, store.CollectionShops, fields)
	if err != nil {
		log.Error("shop write failed", zap.Error(err))
		return readmodel.Shop{}, fmt.Errorf("%w: add shop: %v", domain.ErrWriteFailed, err)
	}

	log.Info("shop created", zap.String("shop_id", id), zap.String("name", cmd.Name))
	return readmodel.DecodeShop(store.Document{ID: id, Fields: fields}), nil
}

func (s *Service) upload(ctx context.Context, path string, u *domain.Upload) (string, error) {
	if !u.Present() {
		return "", nil
	}
	uri, err := s.uploader.Upload(ctx, path, u.ContentType, u.Data)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrWriteFailed, path, err)
	}
	return uri, nil
}
