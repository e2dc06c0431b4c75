package middleware

import (
	"net/http"

	"storefront-be/internal/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request count, latency and in-flight gauge per route
// pattern, so path parameters do not explode label cardinality.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.InFlight(1)
			defer m.InFlight(-1)

			timer := metrics.StartTimer()
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.ObserveRequest(r.Method, route, rec.statusCode, timer.Duration())
		})
	}
}
