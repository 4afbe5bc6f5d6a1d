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
		fmt.Fprintf(os.Stderr, "[Notifier] %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Notifier] %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logging.Module(logger, "Notifier")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunNotifier(ctx, cfg, logger); err != nil {
		logger.Fatal("notifier stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
