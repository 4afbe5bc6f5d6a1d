// Package projection keeps the denormalized shop counters in step with the
// document stream.
package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/metrics"
	"go.uber.org/zap"
)

const workerName = "projector"

// counterFor maps an added collection to the shop field it counts
var counterFor = map[string]string{
	store.CollectionProducts: "productCount",
	store.CollectionOffers:   "offerCount",
}

type Projector struct {
	store  store.DocumentStore
	logger *zap.Logger
}

func NewProjector(st store.DocumentStore, logger *zap.Logger) *Projector {
	return &Projector{
		store:  st,
		logger: logger.With(zap.String("module", "Projector")),
	}
}

// HandleEvent bumps shops/{shopId}.productCount or offerCount for each
// added product or offer. Other events are skipped.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		metrics.RecordEvent(workerName, "error")
		return fmt.Errorf("decode event: %w", err)
	}

	field, ok := counterFor[event.Collection]
	if event.EventType != store.EventDocumentAdded || !ok {
		metrics.RecordEvent(workerName, "skipped")
		return nil
	}

	fields, err := event.Fields()
	if err != nil {
		metrics.RecordEvent(workerName, "error")
		return fmt.Errorf("decode %s payload: %w", event.Collection, err)
	}
	shopID, _ := fields["shopId"].(string)
	if shopID == "" {
		p.logger.Warn("added document has no shop", zap.String("collection", event.Collection), zap.String("document_id", event.DocumentID))
		metrics.RecordEvent(workerName, "skipped")
		return nil
	}

	if err := p.store.Increment(ctx, store.CollectionShops, shopID, field, 1); err != nil {
		metrics.RecordEvent(workerName, "error")
		return fmt.Errorf("increment %s of shop %s: %w", field, shopID, err)
	}

	p.logger.Info("shop counter updated",
		zap.String("shop_id", shopID),
		zap.String("field", field),
		zap.String("document_id", event.DocumentID),
	)
	metrics.RecordEvent(workerName, "ok")
	return nil
}
