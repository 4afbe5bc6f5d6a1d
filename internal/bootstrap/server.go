package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/example/supermall/internal/api"
	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/config"
	"github.com/example/supermall/internal/domain/offer"
	"github.com/example/supermall/internal/domain/product"
	"github.com/example/supermall/internal/domain/shop"
	"github.com/example/supermall/internal/infrastructure/kafka"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/stats"
	"github.com/example/supermall/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

// Handler builds the API handler over res. Writes are announced on Kafka
// when brokers are configured.
func Handler(ctx context.Context, cfg *config.Config, res *Resources, logger *zap.Logger) (http.Handler, error) {
	st := res.Store
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, cfg.KafkaTopic)
		res.closers = append(res.closers, producer.Close)
		st = store.NewPublishingStore(st, producer, logger)
		logger.Info("publishing document events", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}

	verifier, err := res.Verifier(ctx, cfg)
	if err != nil {
		return nil, err
	}
	uploader, uploads, err := res.Uploader(ctx, cfg)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	catalogSvc := catalog.NewService(st, logger, catalog.Options{ApplyShopCategory: cfg.ApplyShopCategory})
	statsSvc := stats.NewService(st, catalogSvc, logger)
	handlers := api.NewHandlers(
		catalogSvc,
		shop.NewService(st, uploader, v, logger),
		product.NewService(st, uploader, v, logger),
		offer.NewService(st, v, logger),
		statsSvc,
		logger,
	)

	opts := api.RouterOptions{
		Verifier: verifier,
		IsAdmin:  statsSvc.IsAdmin,
		Logger:   logger,
	}
	if uploads != nil {
		opts.Uploads = uploads
	}
	if cfg.RateLimitRPS > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	return api.NewRouter(handlers, opts), nil
}

// Serve runs the API over res until ctx is cancelled, then drains
// in-flight requests.
func Serve(ctx context.Context, cfg *config.Config, res *Resources, logger *zap.Logger) error {
	handler, err := Handler(ctx, cfg, res, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("address", cfg.Address), zap.String("auth", cfg.AuthProvider))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
