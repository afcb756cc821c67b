// Package status обрабатывает опрос состояния оплаты заказа.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ogenyiken/zikistore/internal/http/response"
	"github.com/ogenyiken/zikistore/internal/lib/sl"
	"github.com/ogenyiken/zikistore/internal/services/checkout"
)

// Service определяет интерфейс опроса состояния заказа.
type Service interface {
	OrderStatus(ctx context.Context, orderID string) (bool, error)
}

// Handler обрабатывает запросы состояния заказа.
type Handler struct {
	log             *slog.Logger
	checkoutService Service
	validate        *validator.Validate
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
// @Summary Статус оплаты заказа
// @Description Возвращает флаг оплаты заказа. Операция только читает состояние
// @Description и безопасна для периодического опроса.
// @Tags Checkout
// @Produce  json
// @Param id path string true "Идентификатор заказа"
// @Success 200 {object} map[string]any "Состояние заказа"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /orders/{id}/status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	orderID := chi.URLParam(r, "id")
	if err := h.validate.Var(orderID, "required,uuid"); err != nil {
		log.Error("invalid order id", slog.String("order_id", orderID))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid order id"))
		return
	}

	isPaid, err := h.checkoutService.OrderStatus(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, checkout.ErrOrderNotFound) {
			log.Error("order not found", slog.String("order_id", orderID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
			return
		}
		log.Error("failed to read order status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"order_id": orderID,
		"is_paid":  isPaid,
	}))
}
