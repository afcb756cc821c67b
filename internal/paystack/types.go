package paystack

// EventChargeSuccess — единственный тип события, меняющий состояние заказа.
// Остальные события подтверждаются без обработки, чтобы провайдер их не повторял.
const EventChargeSuccess = "charge.success"

// Metadata переносит корреляционные данные через провайдера:
// по ним асинхронный вебхук сопоставляется с заказом и покупателем.
type Metadata struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

// InitializeRequest запрос на открытие платёжной сессии.
// Amount передаётся в минорных единицах валюты (кобо).
type InitializeRequest struct {
	Email       string   `json:"email"`
	Amount      int      `json:"amount"`
	Metadata    Metadata `json:"metadata"`
	CallbackURL string   `json:"callback_url"`
	Reference   string   `json:"reference,omitempty"`
}

// InitializeResponse ответ Paystack на открытие сессии.
type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Event платёжное событие, доставляемое вебхуком.
type Event struct {
	Event string `json:"event"`
	Data  struct {
		Reference string   `json:"reference"`
		Amount    int      `json:"amount"`
		Metadata  Metadata `json:"metadata"`
	} `json:"data"`
}
