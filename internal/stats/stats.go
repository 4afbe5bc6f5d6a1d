// Package stats builds the admin dashboard.
package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/logging"
	"github.com/example/supermall/internal/metrics"
	"github.com/example/supermall/internal/readmodel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Counts are the collection sizes shown on the admin dashboard
type Counts struct {
	Users    int `json:"users"`
	Shops    int `json:"shops"`
	Products int `json:"products"`
	Orders   int `json:"orders"`
}

type Dashboard struct {
	Counts      Counts           `json:"counts"`
	RecentShops []readmodel.Shop `json:"recentShops"`
}

type Service struct {
	store   store.DocumentStore
	catalog *catalog.Service
	logger  *zap.Logger
}

func NewService(st store.DocumentStore, c *catalog.Service, logger *zap.Logger) *Service {
	return &Service{
		store:   st,
		catalog: c,
		logger:  logging.Module(logger, "Admin"),
	}
}

// Dashboard counts the four collections concurrently, then reads the
// newest shops. The first failure is returned.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var counts Counts

	g, gctx := errgroup.WithContext(ctx)
	for collection, dst := range map[string]*int{
		store.CollectionUsers:    &counts.Users,
		store.CollectionShops:    &counts.Shops,
		store.CollectionProducts: &counts.Products,
		store.CollectionOrders:   &counts.Orders,
	} {
		g.Go(func() error {
			n, err := s.store.Count(gctx, collection)
			if err != nil {
				metrics.RecordFetchFailure("Admin", "count_"+collection)
				return &catalog.FetchError{Op: "count_" + collection, Err: err}
			}
			*dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard counts failed", zap.Error(err))
		return Dashboard{}, err
	}

	recent, err := s.catalog.RecentShops(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("recent shops: %w", err)
	}

	s.logger.Debug("dashboard loaded",
		zap.Int("users", counts.Users),
		zap.Int("shops", counts.Shops),
		zap.Int("products", counts.Products),
		zap.Int("orders", counts.Orders),
	)
	return Dashboard{Counts: counts, RecentShops: recent}, nil
}

// IsAdmin reports whether uid's profile carries the admin flag. A missing
// profile is not an admin.
func (s *Service) IsAdmin(ctx context.Context, uid string) (bool, error) {
	profile, err := s.catalog.UserProfile(ctx, uid)
	if errors.Is(err, catalog.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.IsAdmin, nil
}
