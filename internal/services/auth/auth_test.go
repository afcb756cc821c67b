package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ogenyiken/zikistore/internal/lib/jwt"
	"github.com/ogenyiken/zikistore/internal/lib/password"
	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/services/auth"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestRegister(t *testing.T) {
	repoMock := new(UserRepositoryMock)
	service := auth.NewAuthService(repoMock, jwt.NewJWTMaker("secret", time.Hour))

	repoMock.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
		// пароль хэшируется, роль по умолчанию user
		return user.Username == "buyer" &&
			user.Role == models.RoleUser &&
			user.PasswordHash != "secret123" &&
			password.CompareHash(user.PasswordHash, "secret123") == nil
	})).Return("uid-1", nil).Once()

	uid, err := service.Register(context.Background(), "buyer@example.com", "buyer", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	repoMock.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	maker := jwt.NewJWTMaker("secret", time.Hour)

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)
	storedUser := &models.User{
		UUID:         "uid-1",
		Username:     "buyer",
		PasswordHash: hash,
		Role:         models.RoleUser,
	}

	t.Run("valid credentials", func(t *testing.T) {
		repoMock := new(UserRepositoryMock)
		service := auth.NewAuthService(repoMock, maker)

		repoMock.On("GetUserByUsername", mock.Anything, "buyer").Return(storedUser, nil).Once()

		token, role, err := service.Login(ctx, "buyer", "secret123")
		assert.NoError(t, err)
		assert.Equal(t, models.RoleUser, role)
		assert.NotEmpty(t, token)

		claims, err := maker.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "buyer", claims.Username)
		assert.Equal(t, "uid-1", claims.UserUID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repoMock := new(UserRepositoryMock)
		service := auth.NewAuthService(repoMock, maker)

		repoMock.On("GetUserByUsername", mock.Anything, "buyer").Return(storedUser, nil).Once()

		_, _, err := service.Login(ctx, "buyer", "wrongpass")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		repoMock := new(UserRepositoryMock)
		service := auth.NewAuthService(repoMock, maker)

		repoMock.On("GetUserByUsername", mock.Anything, "ghost").
			Return(nil, errors.New("not found")).Once()

		_, _, err := service.Login(ctx, "ghost", "secret123")
		assert.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)
	service := auth.NewAuthService(new(UserRepositoryMock), maker)

	t.Run("valid token", func(t *testing.T) {
		token, err := maker.GenerateToken("buyer", models.RoleUser, "uid-1")
		require.NoError(t, err)

		user, err := service.ValidateToken(context.Background(), token)
		assert.NoError(t, err)
		assert.Equal(t, "buyer", user.Username)
		assert.Equal(t, "uid-1", user.UUID)
		assert.False(t, user.IsAdmin())
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateToken(context.Background(), "not-a-token")
		assert.Error(t, err)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		otherMaker := jwt.NewJWTMaker("other-secret", time.Hour)
		token, err := otherMaker.GenerateToken("buyer", models.RoleUser, "uid-1")
		require.NoError(t, err)

		_, err = service.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})
}
