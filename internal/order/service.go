package order

import (
	"context"

	"storefront-be/internal/apperror"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockInvalidator drops cached catalog entries whose stock changed.
type StockInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...uuid.UUID)
}

type Service interface {
	PlaceOrder(ctx context.Context, identity auth.Identity, lines []LineItem) (*Order, error)
	ListMyOrders(ctx context.Context, identity auth.Identity) ([]Order, error)
}

type service struct {
	repo    Repository
	catalog StockInvalidator
	metrics *metrics.Metrics
}

// NewService wires order placement. catalog and m may be nil.
func NewService(repo Repository, catalog StockInvalidator, m *metrics.Metrics) Service {
	return &service{repo: repo, catalog: catalog, metrics: m}
}

func (s *service) PlaceOrder(ctx context.Context, identity auth.Identity, lines []LineItem) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.String("user_id", identity.UserID.String()),
	)

	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	o, err := s.repo.PlaceOrder(ctx, identity.UserID, lines)
	if err != nil {
		kind := apperror.KindOf(err)
		s.metrics.OrderFailed(kind.String())
		switch kind {
		case apperror.KindNotFound, apperror.KindInsufficientStock, apperror.KindValidation:
			return nil, err
		}
		log.Error("order placement failed", zap.Error(err))
		return nil, apperror.Internal("Failed to create order", err)
	}

	total, _ := o.TotalPrice.Float64()
	s.metrics.OrderPlaced(total)

	if s.catalog != nil {
		ids := make([]uuid.UUID, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		s.catalog.Invalidate(ctx, ids...)
	}

	return o, nil
}

func (s *service) ListMyOrders(ctx context.Context, identity auth.Identity) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve orders", err)
	}
	return orders, nil
}
