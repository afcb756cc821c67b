// Package checkout реализует открытие платёжной сессии для корзины товаров
// и опрос состояния заказа.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/paystack"
	"github.com/ogenyiken/zikistore/internal/storage/repository"
)

// minorUnitFactor переводит основную единицу валюты в минорную (кобо):
// провайдер принимает суммы только в минорных единицах.
const minorUnitFactor = 100

var (
	// ErrEmptyCart возвращается при попытке оплатить пустую корзину.
	ErrEmptyCart = errors.New("empty cart")
	// ErrOrderNotFound возвращается при опросе несуществующего заказа.
	ErrOrderNotFound = errors.New("order not found")
)

// Repository определяет методы хранилища для оформления и опроса заказов.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListProductsByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
	CreateOrder(ctx context.Context, order models.Order) (string, error)
	GetOrder(ctx context.Context, id string, depth int) (*models.Order, error)
}

// ProviderClient определяет интерфейс для работы с платежным провайдером.
type ProviderClient interface {
	InitializeTransaction(ctx context.Context, reqParams paystack.InitializeRequest) (*paystack.InitializeResponse, error)
}

// SessionResult — итог открытия платёжной сессии. CheckoutURL равен nil,
// если провайдер недоступен: заказ при этом уже создан и ждёт повторной
// попытки оплаты, вызывающая сторона обязана обработать вырожденный случай.
type SessionResult struct {
	OrderID     string  `json:"order_id"`
	CheckoutURL *string `json:"checkout_url"`
}

// Service реализует бизнес-логику оформления заказа.
type Service struct {
	repo           Repository
	providerClient ProviderClient
	callbackURL    string
	log            *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, providerClient ProviderClient, callbackURL string, log *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		providerClient: providerClient,
		callbackURL:    callbackURL,
		log:            log,
	}
}

// CreateSession проверяет корзину, создаёт неоплаченный заказ и открывает
// платёжную сессию у провайдера.
//
// Товары без назначенной цены молча отбрасываются как непродаваемые.
// Заказ создаётся ДО обращения к провайдеру: сбой провайдера не теряет
// денежную запись, а лишь оставляет CheckoutURL пустым.
func (s *Service) CreateSession(ctx context.Context, user *models.User, productIDs []string) (*SessionResult, error) {
	const op = "checkout.CreateSession"

	if len(productIDs) == 0 {
		return nil, ErrEmptyCart
	}

	// Идентичность из токена не несёт email, а провайдер требует
	// почту покупателя, поэтому пользователь загружается из хранилища.
	buyer, err := s.repo.GetUser(ctx, user.UUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.repo.ListProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var refs []models.ProductRef
	var totalAmount int
	for _, product := range products {
		if product.Price == nil {
			s.log.Info("skipping product without price",
				slog.String("product_id", product.ID))
			continue
		}
		refs = append(refs, models.ProductRef{ID: product.ID})
		totalAmount += *product.Price
	}

	order := models.Order{
		UserUID:  buyer.UUID,
		Amount:   totalAmount,
		Products: refs,
	}
	orderID, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created pending order",
		slog.String("order_id", orderID), slog.Int("amount", totalAmount))

	initResp, err := s.providerClient.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:  buyer.Email,
		Amount: totalAmount * minorUnitFactor,
		Metadata: paystack.Metadata{
			OrderID: orderID,
			UserID:  buyer.UUID,
		},
		CallbackURL: s.callbackURL,
		Reference:   uuid.NewString(),
	})
	if err != nil {
		// Сбой провайдера не валит операцию: заказ остаётся в базе
		// для повторной попытки или сверки.
		s.log.Error("failed to initialize provider transaction",
			slog.String("order_id", orderID), slog.Any("err", err))
		return &SessionResult{OrderID: orderID}, nil
	}

	url := initResp.Data.AuthorizationURL
	return &SessionResult{OrderID: orderID, CheckoutURL: &url}, nil
}

// OrderStatus возвращает флаг оплаты заказа. Операция только читает
// состояние и безопасна для многократного опроса.
func (s *Service) OrderStatus(ctx context.Context, orderID string) (bool, error) {
	const op = "checkout.OrderStatus"

	order, err := s.repo.GetOrder(ctx, orderID, models.DepthIDs)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrOrderNotFound
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return order.IsPaid, nil
}
