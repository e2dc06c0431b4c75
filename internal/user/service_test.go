package user

import (
	"context"
	"errors"
	"testing"

	"storefront-be/internal/apperror"
	"storefront-be/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) (*User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Generate(id auth.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockTokenIssuer))
		id := uuid.New()

		repo.On("FindByEmail", ctx, "bob@example.com").Return(nil, ErrUserNotFound)
		repo.On("FindByUsername", ctx, "bob").Return(nil, ErrUserNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Username == "bob" &&
				u.Role == auth.RoleUser &&
				u.Password != "Secret1!" &&
				auth.CheckPasswordHash("Secret1!", u.Password)
		})).Return(&User{ID: id, Username: "bob", Email: "bob@example.com", Password: "hash", Role: auth.RoleUser}, nil)

		profile, err := svc.Register(ctx, "bob", "bob@example.com", "Secret1!")
		require.NoError(t, err)
		assert.Equal(t, id, profile.ID)
		assert.Equal(t, auth.RoleUser, profile.Role)
		repo.AssertExpectations(t)
	})

	t.Run("EmailTakenShortCircuits", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockTokenIssuer))

		repo.On("FindByEmail", ctx, "bob@example.com").Return(&User{Email: "bob@example.com"}, nil)

		_, err := svc.Register(ctx, "bob", "bob@example.com", "Secret1!")
		assert.ErrorIs(t, err, ErrEmailExists)
		repo.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockTokenIssuer))

		repo.On("FindByEmail", ctx, "bob@example.com").Return(nil, ErrUserNotFound)
		repo.On("FindByUsername", ctx, "bob").Return(&User{Username: "bob"}, nil)

		_, err := svc.Register(ctx, "bob", "bob@example.com", "Secret1!")
		assert.ErrorIs(t, err, ErrUsernameTaken)
		assert.NotErrorIs(t, err, ErrEmailExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentInsertConflict", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockTokenIssuer))

		repo.On("FindByEmail", ctx, "bob@example.com").Return(nil, ErrUserNotFound)
		repo.On("FindByUsername", ctx, "bob").Return(nil, ErrUserNotFound)
		repo.On("Create", ctx, mock.Anything).Return(nil, ErrEmailExists)

		_, err := svc.Register(ctx, "bob", "bob@example.com", "Secret1!")
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("LookupFailure", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockTokenIssuer))

		repo.On("FindByEmail", ctx, "bob@example.com").Return(nil, errors.New("db down"))

		_, err := svc.Register(ctx, "bob", "bob@example.com", "Secret1!")
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
		assert.ErrorContains(t, err, "db down")
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("Secret1!")
	require.NoError(t, err)

	stored := &User{ID: uuid.New(), Username: "bob", Email: "bob@example.com", Password: hash, Role: auth.RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		tokens := new(MockTokenIssuer)
		svc := NewService(repo, tokens)

		repo.On("FindByEmail", ctx, "bob@example.com").Return(stored, nil)
		tokens.On("Generate", auth.Identity{UserID: stored.ID, Username: "bob", Role: auth.RoleAdmin}).Return("signed", nil)

		result, err := svc.Login(ctx, "bob@example.com", "Secret1!")
		require.NoError(t, err)
		assert.Equal(t, "signed", result.Token)
		assert.Equal(t, stored.ID, result.User.ID)
		assert.Equal(t, auth.RoleAdmin, result.User.Role)
		tokens.AssertExpectations(t)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockTokenIssuer))

		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, ErrUserNotFound)

		_, err := svc.Login(ctx, "ghost@example.com", "Secret1!")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := new(MockRepository)
		tokens := new(MockTokenIssuer)
		svc := NewService(repo, tokens)

		repo.On("FindByEmail", ctx, "bob@example.com").Return(stored, nil)

		_, err := svc.Login(ctx, "bob@example.com", "Wrong1!!")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		tokens.AssertNotCalled(t, "Generate", mock.Anything)
	})

	t.Run("TokenFailure", func(t *testing.T) {
		repo := new(MockRepository)
		tokens := new(MockTokenIssuer)
		svc := NewService(repo, tokens)

		repo.On("FindByEmail", ctx, "bob@example.com").Return(stored, nil)
		tokens.On("Generate", mock.Anything).Return("", auth.ErrMissingSecret)

		_, err := svc.Login(ctx, "bob@example.com", "Secret1!")
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}
