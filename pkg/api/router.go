package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gusamyky/ftpfs/pkg/store"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// Routes:
//   - GET  /health                   - Liveness probe
//   - GET  /health/ready             - Readiness probe (store reachability)
//   - POST /api/v1/auth/login        - User authentication
//   - POST /api/v1/auth/refresh      - Token refresh
//   - GET  /api/v1/auth/me           - Current user info
//   - GET  /api/v1/users             - List users (admin only)
//   - POST /api/v1/users             - Create user (admin only)
//   - GET  /api/v1/users/{username}  - Get user (admin only)
//   - DELETE /api/v1/users/{username} - Delete user (admin only)
func NewRouter(s store.Store, jwtService *JWTService) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := NewHealthHandler(s)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := NewAuthHandler(s, jwtService)
	userHandler := NewUserHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public endpoints
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Authenticated endpoint
			r.Group(func(r chi.Router) {
				r.Use(JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		// User management - admin only
		r.Route("/users", func(r chi.Router) {
			r.Use(JWTAuth(jwtService))
			r.Use(RequireAdmin)

			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{username}", userHandler.Get)
			r.Delete("/{username}", userHandler.Delete)
		})
	})

	return r
}
