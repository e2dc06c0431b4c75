// Package router assembles the HTTP surface of the API.
package router

import (
	"net/http"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/response"
	"storefront-be/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the routes are built from.
type Deps struct {
	Users    *user.Handler
	Products *product.Handler
	Orders   *order.Handler

	Verifier middleware.TokenVerifier
	Metrics  *metrics.Metrics

	// Limiter applies to every route, AuthLimiter additionally to /auth.
	Limiter     *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter

	CORSOrigin string
	// TrustProxy rewrites the client address from forwarding headers before
	// the rate limiters key on it.
	TrustProxy bool
}

type healthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(d.CORSOrigin))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusNotFound, "Route not found", []string{"The requested endpoint does not exist"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "Method not allowed", []string{r.Method + " is not supported on " + r.URL.Path})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, healthStatus{Status: "OK", Timestamp: time.Now().UTC()})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	authenticate := middleware.Authenticate(d.Verifier)

	r.Route("/auth", func(r chi.Router) {
		if d.AuthLimiter != nil {
			r.Use(d.AuthLimiter.Middleware)
		}
		r.Post("/register", d.Users.Register)
		r.Post("/login", d.Users.Login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", d.Products.List)
		r.Get("/{id}", d.Products.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middleware.RequireRoles(auth.RoleAdmin))
			r.Post("/", d.Products.Create)
			r.Put("/{id}", d.Products.Update)
			r.Delete("/{id}", d.Products.Delete)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticate, middleware.RequireRoles(auth.RoleUser, auth.RoleAdmin))
		r.Post("/", d.Orders.Create)
		r.Get("/", d.Orders.List)
	})

	return r
}
