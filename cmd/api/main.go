package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/supermall/internal/bootstrap"
	"github.com/example/supermall/internal/config"
	"github.com/example/supermall/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "[API] %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[API] %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logging.Module(logger, "API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("SuperMall catalog API",
		zap.String("store", cfg.StoreBackend),
		zap.String("auth", cfg.AuthProvider),
		zap.String("objects", cfg.ObjectStore),
		zap.Strings("kafka", cfg.Brokers()))

	res, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open resources", zap.Error(err))
	}
	defer res.Close()

	if err := bootstrap.Serve(ctx, cfg, res, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
