package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/supermall/internal/auth"
	"go.uber.org/zap"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the identity token from cookie or Authorization header
func ExtractToken(r *http.Request) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	// Fall back to Authorization header (for API clients)
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Authenticate verifies the request token when one is present and stores
// the identity in the context. Requests without a valid token continue
// anonymously; RequireAuth rejects them where a user is needed.
func Authenticate(verifier auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				id, err := verifier.Verify(r.Context(), token)
				if err != nil {
					logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				} else {
					r = r.WithContext(auth.WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests that carry no verified identity
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			respondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminChecker reports whether a user may open the admin views
type AdminChecker func(ctx context.Context, uid string) (bool, error)

// RequireAdmin sends authenticated non-admins to redirect with 303.
// Unauthenticated requests get 401.
func RequireAdmin(isAdmin AdminChecker, redirect string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			admin, err := isAdmin(r.Context(), id.UserID)
			if err != nil {
				logger.Error("admin check failed", zap.String("user_id", id.UserID), zap.Error(err))
				respondError(w, "admin check failed", http.StatusBadGateway)
				return
			}
			if !admin {
				logger.Info("non-admin redirected", zap.String("user_id", id.UserID))
				http.Redirect(w, r, redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
