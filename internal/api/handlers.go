// Package api serves the SuperMall views over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/domain"
	"github.com/example/supermall/internal/domain/offer"
	"github.com/example/supermall/internal/domain/product"
	"github.com/example/supermall/internal/domain/shop"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/listing"
	"github.com/example/supermall/internal/stats"
	"github.com/example/supermall/internal/validation"
	"go.uber.org/zap"
)

// maxUploadBytes bounds a multipart create request
const maxUploadBytes = 10 << 20

type Handlers struct {
	catalog  *catalog.Service
	shops    *shop.Service
	products *product.Service
	offers   *offer.Service
	stats    *stats.Service
	logger   *zap.Logger
}

func NewHandlers(
	catalogSvc *catalog.Service,
	shopSvc *shop.Service,
	productSvc *product.Service,
	offerSvc *offer.Service,
	statsSvc *stats.Service,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		catalog:  catalogSvc,
		shops:    shopSvc,
		products: productSvc,
		offers:   offerSvc,
		stats:    statsSvc,
		logger:   logger.With(zap.String("module", "API")),
	}
}

// pageResponse is a listing page; Degraded marks a page emptied by a
// failed fetch.
type pageResponse[T any] struct {
	listing.Result[T]
	Degraded bool `json:"degraded,omitempty"`
}

// respondPage writes a listing page. Store failures degrade to an empty
// page so the view keeps rendering; bad cursors are client errors.
func respondPage[T any](h *Handlers, w http.ResponseWriter, r *http.Request, res listing.Result[T], err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, pageResponse[T]{Result: res})
		return
	}
	if isCursorError(err) || !errors.Is(err, catalog.ErrFetchFailure) {
		h.respondError(w, r, err)
		return
	}

	h.logger.Warn("listing degraded", zap.String("path", r.URL.Path), zap.Error(err))
	respondJSON(w, http.StatusOK, pageResponse[T]{
		Result:   listing.Result[T]{Items: []T{}},
		Degraded: true,
	})
}

func isCursorError(err error) bool {
	return errors.Is(err, store.ErrInvalidCursor) || errors.Is(err, store.ErrCursorMismatch)
}

// respondError maps the error taxonomy onto status codes
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verrs})
		return
	case isCursorError(err):
		respondJSONError(w, "invalid cursor", http.StatusBadRequest)
		return
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, domain.ErrShopNotFound):
		respondJSONError(w, "not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrNotShopOwner):
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return
	case errors.Is(err, catalog.ErrFetchFailure), errors.Is(err, domain.ErrWriteFailed):
		respondJSONError(w, "upstream store unavailable", http.StatusBadGateway)
		return
	}

	h.logger.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
	respondJSONError(w, "internal error", http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
