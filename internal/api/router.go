package api

import (
	"net/http"

	"github.com/example/supermall/internal/api/middleware"
	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterOptions carries the cross-cutting pieces of the HTTP stack
type RouterOptions struct {
	Verifier auth.Verifier
	IsAdmin  middleware.AdminChecker
	Limiter  *rate.Limiter
	// Uploads serves the in-process object store; nil when uploads live in a bucket.
	Uploads http.Handler
	Logger  *zap.Logger
}

func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()
	logger := opts.Logger.With(zap.String("module", "HTTP"))

	user := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(fn)
	}
	admin := middleware.RequireAdmin(opts.IsAdmin, "/dashboard", logger)

	// Public catalog
	mux.HandleFunc("GET /api/shops", h.ListShops)
	mux.HandleFunc("GET /api/shops/{id}", h.GetShop)
	mux.HandleFunc("GET /api/compare/categories", h.CompareCategories)
	mux.HandleFunc("GET /api/compare/products", h.CompareProducts)
	mux.HandleFunc("POST /api/compare", h.Compare)

	// Merchant
	mux.Handle("GET /api/merchant/shops", user(h.MerchantShops))
	mux.Handle("POST /api/merchant/shops", user(h.CreateShop))
	mux.Handle("GET /api/merchant/products", user(h.MerchantProducts))
	mux.Handle("POST /api/merchant/products", user(h.CreateProduct))
	mux.Handle("GET /api/merchant/offers", user(h.MerchantOffers))
	mux.Handle("POST /api/merchant/offers", user(h.CreateOffer))
	mux.Handle("GET /api/dashboard", user(h.Dashboard))

	// Admin
	mux.Handle("GET /api/admin/dashboard", admin(http.HandlerFunc(h.AdminDashboard)))

	// Operations
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads", opts.Uploads))
	}

	route := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	var handler http.Handler = mux
	handler = middleware.Authenticate(opts.Verifier, logger)(handler)
	if opts.Limiter != nil {
		handler = middleware.RateLimit(opts.Limiter)(handler)
	}
	return middleware.Observe(logger, route)(handler)
}
