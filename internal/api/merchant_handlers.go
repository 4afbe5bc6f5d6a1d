package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/domain"
	"github.com/example/supermall/internal/domain/offer"
	"github.com/example/supermall/internal/domain/product"
	"github.com/example/supermall/internal/domain/shop"
	"github.com/example/supermall/internal/listing"
	"github.com/example/supermall/internal/readmodel"
	"github.com/example/supermall/internal/stats"
	"github.com/example/supermall/internal/validation"
	"go.uber.org/zap"
)

// identity returns the verified caller. Routes using it sit behind
// middleware.RequireAuth.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

func merchantScope(r *http.Request) catalog.MerchantScope {
	if shopID := r.URL.Query().Get("shopId"); shopID != "" {
		return catalog.MerchantScope{ShopID: shopID}
	}
	return catalog.MerchantScope{OwnerID: identity(r).UserID}
}

// MerchantShops lists the caller's shops
func (h *Handlers) MerchantShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.catalog.MerchantShops(r.Context(), identity(r).UserID)
	respondPage(h, w, r, listing.Result[readmodel.Shop]{Items: shops}, err)
}

// MerchantProducts serves one page of the caller's products
func (h *Handlers) MerchantProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := h.catalog.MerchantProductSource(merchantScope(r), q.Get("q"))
	res, err := listing.FetchPage(r.Context(), source, q.Get("cursor"))
	respondPage(h, w, r, res, err)
}

// MerchantOffers serves one page of the caller's offers
func (h *Handlers) MerchantOffers(w http.ResponseWriter, r *http.Request) {
	source := h.catalog.MerchantOfferSource(merchantScope(r))
	res, err := listing.FetchPage(r.Context(), source, r.URL.Query().Get("cursor"))
	respondPage(h, w, r, res, err)
}

// CreateShop accepts a multipart form with the shop fields and optional
// logo and cover files.
func (h *Handlers) CreateShop(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	cmd := shop.CreateShop{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Category:    r.FormValue("category"),
		Floor:       r.FormValue("floor"),
		Phone:       r.FormValue("phone"),
		Email:       r.FormValue("email"),
		Website:     r.FormValue("website"),
	}
	logo, err := formUpload(r, "logo")
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cover, err := formUpload(r, "cover")
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.shops.Create(r.Context(), identity(r), cmd, logo, cover)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// CreateProduct accepts a multipart form with the product fields, a JSON
// features object and an optional image.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	cmd := product.CreateProduct{
		ShopID:      r.FormValue("shopId"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}

	var formErr error
	cmd.Price, formErr = parseFloatField(r, "price", formErr)
	cmd.Stock, formErr = parseIntField(r, "stock", formErr)
	if raw := strings.TrimSpace(r.FormValue("features")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cmd.Features); err != nil {
			formErr = validation.Add(formErr, "features", "must be a flat JSON object")
		}
	}
	if formErr != nil {
		h.respondError(w, r, formErr)
		return
	}

	image, err := formUpload(r, "image")
	if err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.products.Create(r.Context(), identity(r), cmd, image)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// CreateOffer accepts a JSON offer
func (h *Handlers) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var cmd offer.CreateOffer
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.offers.Create(r.Context(), identity(r), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type dashboardResponse struct {
	Profile  readmodel.UserProfile `json:"profile"`
	Shops    []readmodel.Shop      `json:"shops,omitempty"`
	Degraded bool                  `json:"degraded,omitempty"`
}

// Dashboard serves the caller's profile, and a merchant's shops. Users
// without a profile document are customers. A failed read falls back to the
// customer view and marks the response degraded.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	fallback := readmodel.UserProfile{UID: id.UserID, Email: id.Email, UserType: readmodel.UserTypeCustomer}

	res := dashboardResponse{}
	profile, err := h.catalog.UserProfile(r.Context(), id.UserID)
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNotFound):
		profile = fallback
	case errors.Is(err, catalog.ErrFetchFailure):
		h.logger.Warn("dashboard profile degraded", zap.String("user_id", id.UserID), zap.Error(err))
		profile, res.Degraded = fallback, true
	default:
		h.respondError(w, r, err)
		return
	}
	res.Profile = profile

	if profile.UserType == readmodel.UserTypeMerchant {
		shops, err := h.catalog.MerchantShops(r.Context(), id.UserID)
		switch {
		case err == nil:
			res.Shops = shops
		case errors.Is(err, catalog.ErrFetchFailure):
			h.logger.Warn("dashboard shops degraded", zap.String("user_id", id.UserID), zap.Error(err))
			res.Degraded = true
		default:
			h.respondError(w, r, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, res)
}

type adminDashboardResponse struct {
	stats.Dashboard
	Degraded bool `json:"degraded,omitempty"`
}

// AdminDashboard serves the collection counts and newest shops. A failed
// count or read shows zeroed stats and no shops.
func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.stats.Dashboard(r.Context())
	if errors.Is(err, catalog.ErrFetchFailure) {
		h.logger.Warn("admin dashboard degraded", zap.Error(err))
		respondJSON(w, http.StatusOK, adminDashboardResponse{
			Dashboard: stats.Dashboard{RecentShops: []readmodel.Shop{}},
			Degraded:  true,
		})
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, adminDashboardResponse{Dashboard: d})
}

// formUpload reads an optional file part. A missing part yields nil.
func formUpload(r *http.Request, field string) (*domain.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseFloatField(r *http.Request, field string, errs error) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, validation.Add(errs, field, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, validation.Add(errs, field, "must be a number")
	}
	return v, errs
}

func parseIntField(r *http.Request, field string, errs error) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, validation.Add(errs, field, "is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Add(errs, field, "must be a whole number")
	}
	return v, errs
}
