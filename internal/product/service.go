package product

import (
	"context"
	"fmt"
	"time"

	"storefront-be/internal/apperror"
	"storefront-be/internal/cache"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	listKeyPrefix = "products:list:"
)

func listKey(opts ListOptions) string {
	return fmt.Sprintf("%s%d:%d:%s", listKeyPrefix, opts.Page, opts.PageSize, opts.Search)
}

func productKey(id uuid.UUID) string {
	return "product:" + id.String()
}

type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Invalidate drops cached entries for products whose stock changed
	// outside the catalog.
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

type service struct {
	repo    Repository
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewService wires the catalog. A nil cache disables caching.
func NewService(repo Repository, c cache.Cache, ttl time.Duration, m *metrics.Metrics) Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &service{repo: repo, cache: c, ttl: ttl, metrics: m}
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	/* ---------- INPUT NORMALIZATION ---------- */

	if opts.Page <= 0 {
		opts.Page = DefaultPage
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	} else if opts.PageSize > MaxPageSize {
		opts.PageSize = MaxPageSize
	}

	/* ---------- CACHE ---------- */

	key := listKey(opts)
	var cached ListResult
	if s.lookup(ctx, log, "product_list", key, &cached) {
		return &cached, nil
	}

	/* ---------- DATABASE ---------- */

	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve products", err)
	}

	result := &ListResult{
		Items:    items,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		Total:    total,
	}
	s.store(ctx, log, key, result)

	return result, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetByID"),
		zap.String("product_id", id.String()),
	)

	key := productKey(id)
	var cached Product
	if s.lookup(ctx, log, "product", key, &cached) {
		return &cached, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("Failed to retrieve product", err)
	}

	s.store(ctx, log, key, p)
	return p, nil
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	in.Price = in.Price.Round(2)
	p, err := s.repo.Create(ctx, creatorID, in)
	if err != nil {
		return nil, apperror.Internal("Failed to create product", err)
	}

	s.invalidate(ctx, log)
	log.Info("product created", zap.String("product_id", p.ID.String()))
	return p, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Update"),
		zap.String("product_id", id.String()),
	)

	if in.Price != nil {
		rounded := in.Price.Round(2)
		in.Price = &rounded
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, err
		}
		return nil, apperror.Internal("Failed to update product", err)
	}

	s.invalidate(ctx, log, productKey(id))
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.String("product_id", id.String()),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindNotFound, apperror.KindConflict:
			return err
		}
		return apperror.Internal("Failed to delete product", err)
	}

	s.invalidate(ctx, log, productKey(id))
	log.Info("product deleted")
	return nil
}

func (s *service) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Invalidate"),
	)

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	s.invalidate(ctx, log, keys...)
}

// lookup reads key into dest. Cache failures count as a miss.
func (s *service) lookup(ctx context.Context, log *zap.Logger, scope, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		found = false
	}
	s.metrics.CacheLookup(scope, found)
	return found
}

func (s *service) store(ctx context.Context, log *zap.Logger, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidate drops every cached list page plus the given keys.
func (s *service) invalidate(ctx context.Context, log *zap.Logger, keys ...string) {
	if err := s.cache.DeletePrefix(ctx, listKeyPrefix); err != nil {
		log.Warn("cache list invalidation failed", zap.Error(err))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn("cache key invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
