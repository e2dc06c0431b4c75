package middleware

import (
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/response"

	"go.uber.org/zap"
)

// Recover turns a panicking handler into a 500 envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromCtx(r.Context()).Error("panic recovered",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Stack("stack"),
			)
			response.Fail(w, http.StatusInternalServerError, "Internal server error", []string{"Internal server error"})
		}()

		next.ServeHTTP(w, r)
	})
}
