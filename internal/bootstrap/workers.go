package bootstrap

import (
	"context"
	"errors"

	"github.com/example/supermall/internal/config"
	"github.com/example/supermall/internal/email"
	"github.com/example/supermall/internal/infrastructure/kafka"
	"github.com/example/supermall/internal/notification"
	"github.com/example/supermall/internal/projection"
	"go.uber.org/zap"
)

var (
	ErrNoBrokers = errors.New("KAFKA_BROKERS is required for stream workers")
	ErrNoSMTP    = errors.New("SMTP_HOST is required for the notifier")
)

// RunProjector consumes document events and maintains the shop counters
// until ctx is cancelled.
func RunProjector(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if len(cfg.Brokers()) == 0 {
		return ErrNoBrokers
	}

	res, err := Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Close()

	projector := projection.NewProjector(res.Store, logger)
	return consume(ctx, cfg, "projector", logger, projector.HandleEvent)
}

// RunNotifier consumes document events and mails new shop owners until
// ctx is cancelled.
func RunNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if len(cfg.Brokers()) == 0 {
		return ErrNoBrokers
	}
	if cfg.SMTPHost == "" {
		return ErrNoSMTP
	}

	sender := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	handler := notification.NewHandler(sender, cfg.PublicBaseURL, logger)
	return consume(ctx, cfg, "notifier", logger, handler.HandleEvent)
}

func consume(ctx context.Context, cfg *config.Config, worker string, logger *zap.Logger, handler kafka.MessageHandler) error {
	group := cfg.KafkaConsumerGroup
	if group == "" {
		group = worker
	}

	consumer := kafka.NewConsumer(cfg.Brokers(), cfg.KafkaTopic, group, logger)
	defer consumer.Close()

	logger.Info("consuming", zap.String("worker", worker), zap.String("topic", cfg.KafkaTopic), zap.String("group", group))
	err := consumer.Consume(ctx, handler)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
