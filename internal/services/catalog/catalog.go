// Package catalog реализует создание товаров магазина.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogenyiken/zikistore/internal/models"
)

// Repository определяет методы хранилища для работы с товарами.
type Repository interface {
	CreateProduct(ctx context.Context, product models.Product) (string, error)
}

// Service реализует бизнес-логику каталога товаров.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create сохраняет новый товар. Продавец берётся из аутентифицированного
// пользователя, значение из тела запроса игнорируется.
func (s *Service) Create(ctx context.Context, user *models.User, dummy models.DummyProduct) (string, error) {
	const op = "catalog.Create"

	product := models.Product{
		UserUID: user.UUID,
		Name:    dummy.Name,
		Price:   dummy.Price,
		FileIDs: dummy.FileIDs,
	}
	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product created",
		slog.String("product_id", id), slog.String("seller_uid", user.UUID))
	return id, nil
}
