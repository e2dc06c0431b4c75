package product

import "storefront-be/internal/apperror"

var (
	ErrProductNotFound = apperror.NotFound("Product not found")
	ErrProductInUse    = apperror.Conflict("Failed to delete product", "Product is referenced by existing orders")
)
