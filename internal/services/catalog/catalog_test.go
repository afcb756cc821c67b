package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/services/catalog"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) CreateProduct(ctx context.Context, product models.Product) (string, error) {
	args := m.Called(ctx, product)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func intPtr(v int) *int { return &v }

func TestCreate(t *testing.T) {
	user := &models.User{UUID: "seller-1"}

	t.Run("seller is taken from the authenticated user", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		service := catalog.New(repoMock, newNoopLogger())

		repoMock.On("CreateProduct", mock.Anything, mock.MatchedBy(func(product models.Product) bool {
			return product.UserUID == "seller-1" &&
				product.Name == "E-Book" &&
				product.Price != nil && *product.Price == 500 &&
				len(product.FileIDs) == 1
		})).Return("prod-1", nil).Once()

		id, err := service.Create(context.Background(), user, models.DummyProduct{
			Name:    "E-Book",
			Price:   intPtr(500),
			FileIDs: []string{"file-1"},
		})
		assert.NoError(t, err)
		assert.Equal(t, "prod-1", id)
		repoMock.AssertExpectations(t)
	})

	t.Run("repository error is propagated", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		service := catalog.New(repoMock, newNoopLogger())

		repoMock.On("CreateProduct", mock.Anything, mock.Anything).
			Return("", errors.New("db down")).Once()

		_, err := service.Create(context.Background(), user, models.DummyProduct{
			Name:    "E-Book",
			FileIDs: []string{"file-1"},
		})
		assert.Error(t, err)
	})
}
