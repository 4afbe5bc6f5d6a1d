package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/supermall/internal/catalog"
	"github.com/example/supermall/internal/compare"
	"github.com/example/supermall/internal/listing"
	"github.com/example/supermall/internal/readmodel"
	"github.com/example/supermall/internal/validation"
	"go.uber.org/zap"
)

// maxCompareIDs bounds the product reads of one compare request
const maxCompareIDs = 10

// ListShops serves one page of the mall directory
func (h *Handlers) ListShops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := h.catalog.ShopSource(catalog.ShopFilter{
		Category: q.Get("category"),
		Search:   q.Get("q"),
	})
	res, err := listing.FetchPage(r.Context(), source, q.Get("cursor"))
	respondPage(h, w, r, res, err)
}

// GetShop serves the shop page
func (h *Handlers) GetShop(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.ShopDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
	Default    string   `json:"default"`
	Degraded   bool     `json:"degraded,omitempty"`
}

// CompareCategories serves the categories discovered from a product sample
func (h *Handlers) CompareCategories(w http.ResponseWriter, r *http.Request) {
	sample, err := h.catalog.CategorySample(r.Context())
	if err != nil {
		h.logger.Warn("category discovery degraded", zap.Error(err))
		respondJSON(w, http.StatusOK, categoriesResponse{Categories: []string{}, Degraded: true})
		return
	}

	res := categoriesResponse{Categories: compare.DiscoverCategories(sample)}
	if len(res.Categories) > 0 {
		res.Default = res.Categories[0]
	}
	respondJSON(w, http.StatusOK, res)
}

// CompareProducts serves one page of compare candidates of a category
func (h *Handlers) CompareProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		h.respondError(w, r, validation.Add(nil, "category", "is required"))
		return
	}
	res, err := listing.FetchPage(r.Context(), h.catalog.CompareProductSource(category), q.Get("cursor"))
	respondPage(h, w, r, res, err)
}

type compareRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type compareResponse struct {
	Selected []readmodel.Product `json:"selected"`
	Matrix   compare.Matrix      `json:"matrix"`
	Rejected []string            `json:"rejected"`
	Missing  []string            `json:"missing"`
}

// Compare selects the requested products in order and builds their matrix.
// Repeated ids count once, so a request never toggles a product back out.
// Ids past the selection capacity are reported as rejected, unknown ids as
// missing.
func (h *Handlers) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.ProductIDs) > maxCompareIDs {
		h.respondError(w, r, validation.Add(nil, "product_ids", "must have at most 10 items"))
		return
	}

	products := make([]readmodel.Product, 0, len(req.ProductIDs))
	missing := []string{}
	seen := make(map[string]struct{}, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, err := h.catalog.Product(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		products = append(products, p)
	}

	sel, rejected := compare.SelectIDs(products)
	selected := sel.Items()
	respondJSON(w, http.StatusOK, compareResponse{
		Selected: selected,
		Matrix:   compare.BuildMatrix(selected),
		Rejected: rejected,
		Missing:  missing,
	})
}
