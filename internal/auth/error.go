package auth

import "storefront-be/internal/apperror"

var (
	ErrAuthRequired     = apperror.Unauthorized("Authentication required", "No token provided")
	ErrTokenRejected    = apperror.Unauthorized("Invalid or expired token")
	ErrNoIdentity       = apperror.Unauthorized("Authentication required")
	ErrPermissionDenied = apperror.Forbidden("Insufficient permissions")
)
