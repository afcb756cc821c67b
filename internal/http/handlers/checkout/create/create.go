// Package create обрабатывает открытие платёжной сессии для корзины товаров.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ogenyiken/zikistore/internal/http/middlewarectx"
	"github.com/ogenyiken/zikistore/internal/http/response"
	"github.com/ogenyiken/zikistore/internal/lib/sl"
	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/services/checkout"
)

// Service определяет интерфейс бизнес-логики оформления заказа.
type Service interface {
	CreateSession(ctx context.Context, user *models.User, productIDs []string) (*checkout.SessionResult, error)
}

// Handler обрабатывает запросы на открытие платёжной сессии.
type Handler struct {
	log             *slog.Logger // Логгер для записи информации и ошибок
	checkoutService Service
	validate        *validator.Validate // Валидатор структуры входящих данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checkoutService Service) *Handler {
	return &Handler{
		log:             log,
		checkoutService: checkoutService,
		validate:        validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Открыть платёжную сессию
// @Description Создает неоплаченный заказ по корзине товаров и возвращает ссылку на оплату.
// @Description Если платёжный провайдер недоступен, заказ всё равно создаётся, а checkout_url равен null.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param request body models.DummyCheckout true "Идентификаторы товаров в корзине"
// @Success 200 {object} checkout.SessionResult "Платёжная сессия открыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустая корзина"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyCheckout
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.checkoutService.CreateSession(r.Context(), user, req.ProductIDs)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			log.Error("empty cart")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("cart is empty"))
			return
		}
		log.Error("failed to create payment session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("payment session created", slog.String("order_id", result.OrderID))
	render.JSON(w, r, response.OKWithData(result))
}
