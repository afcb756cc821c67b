// Package payment обрабатывает платёжные события провайдера:
// переводит заказ в оплаченное состояние и инициирует отправку чека.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/paystack"
	"github.com/ogenyiken/zikistore/internal/storage/repository"
)

var (
	// ErrInvalidPayload возвращается при событии без корреляционных метаданных.
	ErrInvalidPayload = errors.New("invalid event payload")
	// ErrUserNotFound возвращается, если покупатель из метаданных неизвестен.
	ErrUserNotFound = errors.New("user not found")
	// ErrOrderNotFound возвращается, если заказ из метаданных неизвестен.
	ErrOrderNotFound = errors.New("order not found")
	// ErrReceiptDelivery сообщает о сбое отправки чека. Переход заказа
	// в оплаченное состояние к этому моменту уже зафиксирован и не откатывается.
	ErrReceiptDelivery = errors.New("receipt delivery failed")
)

// RoutingKeyOrderPaid — ключ маршрутизации события об оплате заказа.
const RoutingKeyOrderPaid = "order.paid"

// Repository определяет методы хранилища для обработки платёжного события.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetOrder(ctx context.Context, id string, depth int) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, orderID string) (int, error)
}

// ReceiptSender отправляет покупателю чек по оплаченному заказу.
type ReceiptSender interface {
	SendReceipt(order *models.Order, user *models.User) error
}

// EventPublisher публикует события магазина в брокер сообщений.
type EventPublisher interface {
	Publish(routingKey string, event any) error
}

// EntitlementInvalidator сбрасывает закешированные права пользователя.
type EntitlementInvalidator interface {
	InvalidateUser(ctx context.Context, userUID string) error
}

// OrderPaidEvent — событие, публикуемое после перевода заказа в оплаченные.
type OrderPaidEvent struct {
	OrderID string `json:"order_id"`
	UserUID string `json:"user_uid"`
	Amount  int    `json:"amount"`
}

// Service реализует обработку платёжных событий.
type Service struct {
	repo         Repository
	sender       ReceiptSender
	publisher    EventPublisher
	entitlements EntitlementInvalidator
	log          *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, sender ReceiptSender, publisher EventPublisher,
	entitlements EntitlementInvalidator, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		sender:       sender,
		publisher:    publisher,
		entitlements: entitlements,
		log:          log,
	}
}

// ProcessChargeSuccess обрабатывает успешное платёжное событие.
//
// Заказ и покупатель находятся по метаданным события. Если заказ уже
// оплачен, обработка завершается сразу: повторная доставка вебхука не
// переотправляет чек. Сама запись флага безусловная, поэтому гонка двух
// одновременных доставок в худшем случае повторяет запись true поверх true.
// Сбой отправки чека возвращается ошибкой, но состояние оплаты к этому
// моменту уже зафиксировано.
func (s *Service) ProcessChargeSuccess(ctx context.Context, event *paystack.Event) error {
	const op = "payment.ProcessChargeSuccess"

	meta := event.Data.Metadata
	if meta.OrderID == "" || meta.UserID == "" {
		return ErrInvalidPayload
	}

	user, err := s.repo.GetUser(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	// Глубина раскрытия нужна заранее: чек составляется из товаров заказа.
	order, err := s.repo.GetOrder(ctx, meta.OrderID, models.DepthFiles)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if order.IsPaid {
		s.log.Info("duplicate webhook delivery, order already paid",
			slog.String("order_id", order.ID))
		return nil
	}

	if _, err := s.repo.MarkOrderPaid(ctx, order.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("order marked as paid", slog.String("order_id", order.ID))

	if err := s.publisher.Publish(RoutingKeyOrderPaid, OrderPaidEvent{
		OrderID: order.ID,
		UserUID: order.UserUID,
		Amount:  order.Amount,
	}); err != nil {
		s.log.Warn("failed to publish order.paid event",
			slog.String("order_id", order.ID), slog.Any("err", err))
	}

	if err := s.entitlements.InvalidateUser(ctx, order.UserUID); err != nil {
		s.log.Warn("failed to invalidate entitlements cache",
			slog.String("user_uid", order.UserUID), slog.Any("err", err))
	}

	if err := s.sender.SendReceipt(order, user); err != nil {
		s.log.Error("failed to send receipt",
			slog.String("order_id", order.ID), slog.Any("err", err))
		return fmt.Errorf("%w: %w", ErrReceiptDelivery, err)
	}

	return nil
}
