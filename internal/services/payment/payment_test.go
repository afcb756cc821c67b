package payment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/paystack"
	"github.com/ogenyiken/zikistore/internal/services/payment"
	"github.com/ogenyiken/zikistore/internal/storage/repository"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *RepositoryMock) GetOrder(ctx context.Context, id string, depth int) (*models.Order, error) {
	args := m.Called(ctx, id, depth)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *RepositoryMock) MarkOrderPaid(ctx context.Context, orderID string) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) SendReceipt(order *models.Order, user *models.User) error {
	args := m.Called(order, user)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, event any) error {
	args := m.Called(routingKey, event)
	return args.Error(0)
}

type InvalidatorMock struct {
	mock.Mock
}

func (m *InvalidatorMock) InvalidateUser(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func chargeSuccessEvent(orderID, userID string) *paystack.Event {
	event := &paystack.Event{Event: paystack.EventChargeSuccess}
	event.Data.Metadata = paystack.Metadata{OrderID: orderID, UserID: userID}
	return event
}

func newService(repo *RepositoryMock, sender *SenderMock, publisher *PublisherMock, invalidator *InvalidatorMock) *payment.Service {
	return payment.New(repo, sender, publisher, invalidator, newNoopLogger())
}

func TestProcessChargeSuccess(t *testing.T) {
	ctx := context.Background()
	user := &models.User{UUID: "user-1", Email: "buyer@example.com"}

	t.Run("marks order paid, publishes event, invalidates cache, sends receipt", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		senderMock := new(SenderMock)
		publisherMock := new(PublisherMock)
		invalidatorMock := new(InvalidatorMock)
		service := newService(repoMock, senderMock, publisherMock, invalidatorMock)

		order := &models.Order{ID: "order-1", UserUID: "user-1", Amount: 500, IsPaid: false}

		repoMock.On("GetUser", mock.Anything, "user-1").Return(user, nil).Once()
		repoMock.On("GetOrder", mock.Anything, "order-1", models.DepthFiles).Return(order, nil).Once()
		repoMock.On("MarkOrderPaid", mock.Anything, "order-1").Return(1, nil).Once()
		publisherMock.On("Publish", payment.RoutingKeyOrderPaid, payment.OrderPaidEvent{
			OrderID: "order-1", UserUID: "user-1", Amount: 500,
		}).Return(nil).Once()
		invalidatorMock.On("InvalidateUser", mock.Anything, "user-1").Return(nil).Once()
		senderMock.On("SendReceipt", order, user).Return(nil).Once()

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("order-1", "user-1"))
		assert.NoError(t, err)
		repoMock.AssertExpectations(t)
		senderMock.AssertExpectations(t)
		publisherMock.AssertExpectations(t)
		invalidatorMock.AssertExpectations(t)
	})

	t.Run("duplicate delivery of paid order is a no-op", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		senderMock := new(SenderMock)
		service := newService(repoMock, senderMock, new(PublisherMock), new(InvalidatorMock))

		repoMock.On("GetUser", mock.Anything, "user-1").Return(user, nil).Once()
		repoMock.On("GetOrder", mock.Anything, "order-1", models.DepthFiles).
			Return(&models.Order{ID: "order-1", UserUID: "user-1", IsPaid: true}, nil).Once()

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("order-1", "user-1"))
		assert.NoError(t, err)
		repoMock.AssertNotCalled(t, "MarkOrderPaid")
		senderMock.AssertNotCalled(t, "SendReceipt")
	})

	t.Run("missing metadata", func(t *testing.T) {
		service := newService(new(RepositoryMock), new(SenderMock), new(PublisherMock), new(InvalidatorMock))

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("", "user-1"))
		assert.ErrorIs(t, err, payment.ErrInvalidPayload)

		err = service.ProcessChargeSuccess(ctx, chargeSuccessEvent("order-1", ""))
		assert.ErrorIs(t, err, payment.ErrInvalidPayload)
	})

	t.Run("unknown user", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		service := newService(repoMock, new(SenderMock), new(PublisherMock), new(InvalidatorMock))

		repoMock.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("order-1", "ghost"))
		assert.ErrorIs(t, err, payment.ErrUserNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		service := newService(repoMock, new(SenderMock), new(PublisherMock), new(InvalidatorMock))

		repoMock.On("GetUser", mock.Anything, "user-1").Return(user, nil).Once()
		repoMock.On("GetOrder", mock.Anything, "missing", models.DepthFiles).
			Return(nil, repository.ErrNotFound).Once()

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("missing", "user-1"))
		assert.ErrorIs(t, err, payment.ErrOrderNotFound)
	})

	t.Run("receipt failure keeps the paid transition", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		senderMock := new(SenderMock)
		publisherMock := new(PublisherMock)
		invalidatorMock := new(InvalidatorMock)
		service := newService(repoMock, senderMock, publisherMock, invalidatorMock)

		order := &models.Order{ID: "order-1", UserUID: "user-1", Amount: 500, IsPaid: false}

		repoMock.On("GetUser", mock.Anything, "user-1").Return(user, nil).Once()
		repoMock.On("GetOrder", mock.Anything, "order-1", models.DepthFiles).Return(order, nil).Once()
		repoMock.On("MarkOrderPaid", mock.Anything, "order-1").Return(1, nil).Once()
		publisherMock.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()
		invalidatorMock.On("InvalidateUser", mock.Anything, "user-1").Return(nil).Once()
		senderMock.On("SendReceipt", order, user).Return(errors.New("smtp down")).Once()

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("order-1", "user-1"))
		assert.ErrorIs(t, err, payment.ErrReceiptDelivery)
		repoMock.AssertCalled(t, "MarkOrderPaid", mock.Anything, "order-1")
	})

	t.Run("publisher failure does not fail processing", func(t *testing.T) {
		repoMock := new(RepositoryMock)
		senderMock := new(SenderMock)
		publisherMock := new(PublisherMock)
		invalidatorMock := new(InvalidatorMock)
		service := newService(repoMock, senderMock, publisherMock, invalidatorMock)

		order := &models.Order{ID: "order-1", UserUID: "user-1", Amount: 500, IsPaid: false}

		repoMock.On("GetUser", mock.Anything, "user-1").Return(user, nil).Once()
		repoMock.On("GetOrder", mock.Anything, "order-1", models.DepthFiles).Return(order, nil).Once()
		repoMock.On("MarkOrderPaid", mock.Anything, "order-1").Return(1, nil).Once()
		publisherMock.On("Publish", mock.Anything, mock.Anything).
			Return(errors.New("broker down")).Once()
		invalidatorMock.On("InvalidateUser", mock.Anything, "user-1").Return(nil).Once()
		senderMock.On("SendReceipt", order, user).Return(nil).Once()

		err := service.ProcessChargeSuccess(ctx, chargeSuccessEvent("order-1", "user-1"))
		assert.NoError(t, err)
	})
}
