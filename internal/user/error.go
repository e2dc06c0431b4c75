package user

import (
	"errors"

	"storefront-be/internal/apperror"
)

var (
	ErrEmailExists        = apperror.Conflict("Registration failed", "Email already registered")
	ErrUsernameTaken      = apperror.Conflict("Registration failed", "Username already taken")
	ErrInvalidCredentials = apperror.Unauthorized("Login failed", "Invalid credentials")

	// ErrUserNotFound is returned by the repository and never reaches a client.
	ErrUserNotFound = errors.New("user not found")
)
