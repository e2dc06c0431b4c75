package user

import (
	"context"
	"errors"

	"storefront-be/internal/apperror"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// TokenIssuer signs access tokens for an authenticated identity.
type TokenIssuer interface {
	Generate(id auth.Identity) (string, error)
}

type Service interface {
	Register(ctx context.Context, username, email, password string) (Profile, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, username, email, password string) (Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	// Email is checked first and short-circuits the username check.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		log.Info("email already registered", zap.String("email", email))
		return Profile{}, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return Profile{}, apperror.Internal("Registration failed", err)
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		log.Info("username already taken", zap.String("username", username))
		return Profile{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return Profile{}, apperror.Internal("Registration failed", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return Profile{}, apperror.Internal("Registration failed", err)
	}

	u, err := s.repo.Create(ctx, &User{
		Username: username,
		Email:    email,
		Password: hashed,
		Role:     auth.RoleUser,
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindConflict {
			return Profile{}, err
		}
		return Profile{}, apperror.Internal("Registration failed", err)
	}

	log.Info("user registered", zap.String("user_id", u.ID.String()))
	return u.Profile(), nil
}

func (s *service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login with unknown email")
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, apperror.Internal("Login failed", err)
	}

	if !auth.CheckPasswordHash(password, u.Password) {
		log.Info("password mismatch", zap.String("user_id", u.ID.String()))
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.Identity())
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return AuthResult{}, apperror.Internal("Login failed", err)
	}

	return AuthResult{Token: token, User: u.Profile()}, nil
}
