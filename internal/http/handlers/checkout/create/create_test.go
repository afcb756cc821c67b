package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ogenyiken/zikistore/internal/http/middlewarectx"
	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/services/checkout"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateSession(ctx context.Context, user *models.User, productIDs []string) (*checkout.SessionResult, error) {
	args := m.Called(ctx, user, productIDs)
	result, _ := args.Get(0).(*checkout.SessionResult)
	return result, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func authedRequest(body []byte) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
	ctx = context.WithValue(ctx, middlewarectx.User, "buyer")
	ctx = context.WithValue(ctx, middlewarectx.Role, models.RoleUser)
	ctx = context.WithValue(ctx, middlewarectx.UserUID, "user-1")
	return req.WithContext(ctx)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	checkoutURL := "https://checkout.paystack.com/abc"
	productIDs := []string{"3e0a2a1e-7c43-4f4e-9d28-9a4b2b5e6f01"}

	tests := []struct {
		name           string
		requestBody    any
		mockResult     *checkout.SessionResult
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "valid checkout",
			requestBody:    models.DummyCheckout{ProductIDs: productIDs},
			mockResult:     &checkout.SessionResult{OrderID: "order-1", CheckoutURL: &checkoutURL},
			expectCall:     true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "degraded checkout without url",
			requestBody:    models.DummyCheckout{ProductIDs: productIDs},
			mockResult:     &checkout.SessionResult{OrderID: "order-1"},
			expectCall:     true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - not a uuid",
			requestBody:    models.DummyCheckout{ProductIDs: []string{"not-a-uuid"}},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
		{
			name:           "empty cart rejected by validation",
			requestBody:    models.DummyCheckout{ProductIDs: []string{}},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
		},
		{
			name:           "service error",
			requestBody:    models.DummyCheckout{ProductIDs: productIDs},
			mockErr:        errors.New("db down"),
			expectCall:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.expectCall {
				serviceMock.On("CreateSession", mock.Anything, mock.Anything, mock.Anything).
					Return(tt.mockResult, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest(bodyBytes))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}
			if tt.mockResult != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.mockResult.OrderID, data["order_id"])
				if tt.mockResult.CheckoutURL == nil {
					assert.Nil(t, data["checkout_url"])
				} else {
					assert.Equal(t, *tt.mockResult.CheckoutURL, data["checkout_url"])
				}
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

func TestCreateHandler_Unauthenticated(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	body, _ := json.Marshal(models.DummyCheckout{ProductIDs: []string{"3e0a2a1e-7c43-4f4e-9d28-9a4b2b5e6f01"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(body))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	serviceMock.AssertNotCalled(t, "CreateSession")
}
