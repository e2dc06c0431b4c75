package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/cache"
	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/router"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

const (
	cachePrefix     = "storefront"
	shutdownTimeout = 30 * time.Second
)

// Replaced in tests.
var (
	initDBFunc      = db.InitDB
	initCacheFunc   = connectCache
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	store := initCacheFunc(ctx, cfg)
	defer store.Close()

	handler, err := newServer(ctx, cfg, database, store)
	if err != nil {
		return err
	}

	return startServerFunc(ctx, ":"+cfg.AppPort, handler)
}

// connectCache falls back to a no-op cache so the API keeps serving from the
// database when Redis is down.
func connectCache(ctx context.Context, cfg *config.Config) cache.Cache {
	c, err := cache.NewRedisCacheFromURL(ctx, cfg.RedisURL, cachePrefix)
	if err != nil {
		logger.L().Warn("redis unavailable, continuing without cache", zap.Error(err))
		return cache.NewNoOpCache()
	}
	logger.L().Info("redis connection established")
	return c
}

func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, store cache.Cache) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	productSvc := product.NewService(product.NewRepository(database), store, cfg.CacheTTL, m)
	userSvc := user.NewService(user.NewRepository(database), tokens)
	orderSvc := order.NewService(order.NewRepository(database), productSvc, m)

	return router.New(router.Deps{
		Users:    user.NewHandler(userSvc),
		Products: product.NewHandler(productSvc),
		Orders:   order.NewHandler(orderSvc),
		Verifier: tokens,
		Metrics:  m,
		Limiter: middleware.NewRateLimiter(ctx, cfg.RateLimitMaxRequests, cfg.RateLimitWindow,
			"Too many requests, please try again later"),
		AuthLimiter: middleware.NewRateLimiter(ctx, cfg.AuthRateLimitMax, cfg.RateLimitWindow,
			"Too many authentication attempts, please try again later"),
		CORSOrigin: cfg.CORSAllowedOrigin,
		TrustProxy: cfg.TrustProxy,
	}), nil
}

// serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.L().Info("server stopped")
	return nil
}
