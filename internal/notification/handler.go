package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/supermall/internal/email"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/metrics"
	"go.uber.org/zap"
)

const workerName = "notifier"

// Handler processes events for sending notifications
type Handler struct {
	sender  email.Sender
	baseURL string
	logger  *zap.Logger
}

// NewHandler creates a new notification handler. baseURL prefixes the shop
// link in mails and may be empty.
func NewHandler(sender email.Sender, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With(zap.String("module", "Notifier")),
	}
}

// HandleEvent sends the welcome mail for every added shop
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		metrics.RecordEvent(workerName, "error")
		return fmt.Errorf("decode event: %w", err)
	}

	if event.EventType != store.EventDocumentAdded || event.Collection != store.CollectionShops {
		metrics.RecordEvent(workerName, "skipped")
		return nil
	}
	return h.handleShopAdded(event)
}

func (h *Handler) handleShopAdded(event store.Event) error {
	fields, err := event.Fields()
	if err != nil {
		metrics.RecordEvent(workerName, "error")
		return fmt.Errorf("decode shop payload: %w", err)
	}

	log := h.logger.With(zap.String("shop_id", event.DocumentID))
	to, _ := fields["ownerEmail"].(string)
	if to == "" {
		log.Warn("shop has no owner email")
		metrics.RecordEvent(workerName, "skipped")
		return nil
	}

	shop := email.ShopWelcome{ID: event.DocumentID}
	shop.Name, _ = fields["name"].(string)
	shop.Category, _ = fields["category"].(string)
	shop.Location, _ = fields["location"].(string)
	if h.baseURL != "" {
		shop.URL = h.baseURL + "/shops/" + event.DocumentID
	}

	if err := email.SendShopWelcome(h.sender, to, shop); err != nil {
		metrics.RecordEvent(workerName, "error")
		return err
	}

	log.Info("welcome email sent", zap.String("to", to))
	metrics.RecordEvent(workerName, "ok")
	return nil
}
