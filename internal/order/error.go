package order

import "storefront-be/internal/apperror"

var (
	ErrProductsNotFound  = apperror.NotFound("Order creation failed", "One or more products not found")
	ErrInsufficientStock = apperror.InsufficientStock("Order creation failed")
	ErrEmptyOrder        = apperror.Validation("Validation failed", "Order must contain at least one item")
	ErrOrderTooLarge     = apperror.Validation("Order creation failed", "Order total exceeds "+MaxTotal.StringFixed(2))
)
