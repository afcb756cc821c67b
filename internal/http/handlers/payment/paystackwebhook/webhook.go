// Package paystackwebhook обрабатывает платёжные вебхуки Paystack.
package paystackwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ogenyiken/zikistore/internal/http/response"
	"github.com/ogenyiken/zikistore/internal/lib/sl"
	"github.com/ogenyiken/zikistore/internal/paystack"
	"github.com/ogenyiken/zikistore/internal/services/payment"
)

// Service определяет интерфейс обработки успешного платёжного события.
type Service interface {
	ProcessChargeSuccess(ctx context.Context, event *paystack.Event) error
}

// Handler обрабатывает вебхуки платёжного провайдера.
type Handler struct {
	log            *slog.Logger // Логгер для записи информации и ошибок
	paymentService Service
	webhookSecret  string // Секрет для проверки подписи
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, paymentService Service, secret string) *Handler {
	return &Handler{
		log:            log,
		paymentService: paymentService,
		webhookSecret:  secret,
	}
}

// Проверка подписи webhook (x-paystack-signature): HMAC-SHA512 тела,
// закодированный в hex ключом секрета Paystack.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук Paystack
// @Description Принимает события Paystack, проверяет подпись и переводит заказ
// @Description в оплаченное состояние по событию charge.success. Повторная доставка
// @Description того же события безопасна и не переотправляет чек.
// @Tags Webhooks
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response "Событие обработано или проигнорировано"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело или метаданные"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 404 {object} response.ErrorResponse "Пользователь или заказ не найдены"
// @Failure 500 {object} response.ErrorResponse "Сбой отправки чека"
// @Router /webhooks/paystack [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paystackwebhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer func() { _ = r.Body.Close() }()

	signature := r.Header.Get("x-paystack-signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event paystack.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if event.Event == "" {
		log.Error("webhook event missing type discriminator")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing event type"))
		return
	}

	if event.Event != paystack.EventChargeSuccess {
		log.Info("ignored webhook event", slog.String("event", event.Event))
		render.JSON(w, r, response.OK())
		return
	}

	if err := h.paymentService.ProcessChargeSuccess(r.Context(), &event); err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidPayload):
			log.Error("webhook event missing metadata")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("missing order or user metadata"))
		case errors.Is(err, payment.ErrUserNotFound):
			log.Error("webhook user not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, payment.ErrOrderNotFound):
			log.Error("webhook order not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
		default:
			log.Error("failed to process webhook event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to process event"))
		}
		return
	}

	log.Info("webhook processed successfully", slog.String("event", event.Event))
	render.JSON(w, r, response.OK())
}
