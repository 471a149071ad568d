package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/gusamyky/ftpfs/internal/logger"
)

type contextKey string

// claimsContextKey is the context key under which validated JWT claims are
// stored for downstream handlers.
const claimsContextKey contextKey = "api.claims"

// ClaimsFromContext extracts validated JWT claims from the request context.
// Returns nil if the request did not pass through JWTAuth.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// JWTAuth returns middleware that requires a valid Bearer access token.
// The validated claims are stored in the request context.
func JWTAuth(jwtService *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				Unauthorized(w, "Missing Authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				Unauthorized(w, "Authorization header must use Bearer scheme")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects requests whose claims do not
// carry the admin role. Must run after JWTAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			Unauthorized(w, "Authentication required")
			return
		}
		if !claims.IsAdmin() {
			Forbidden(w, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs every request through the internal logger, including
// status code and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debug("API request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}
