package models

import "time"

// Глубины разрешения связей при чтении из хранилища.
// При DepthIDs связанные сущности возвращаются голыми идентификаторами,
// при DepthFiles заказ раскрывается до товаров и их файлов за один проход.
const (
	DepthIDs   = 0
	DepthFiles = 2
)

// Order представляет запись о покупке, оплаченной или нет.
// Заказ неизменяем за одним исключением: флаг IsPaid переходит
// из false в true не более одного раза, обратного перехода нет.
// Amount — итоговая сумма в основной единице валюты, зафиксированная
// при создании заказа и не пересчитываемая при изменении цен товаров.
type Order struct {
	ID        string       // Уникальный идентификатор заказа
	UserUID   string       // UID покупателя
	Amount    int          // Сумма заказа в основной единице валюты
	IsPaid    bool         // Флаг оплаты
	CreatedAt time.Time    // Дата создания заказа
	Products  []ProductRef // Товары заказа, голые ID либо раскрытые объекты
}

// ProductRef — ссылка на товар внутри заказа. В зависимости от глубины
// разрешения связь приходит либо голым идентификатором, либо раскрытым
// объектом. Единая точка нормализации вместо разбросанных проверок типов.
type ProductRef struct {
	ID      string   // Идентификатор товара, заполнен всегда
	Product *Product // Раскрытый товар, nil при недостаточной глубине
}

// Resolved сообщает, раскрыта ли ссылка до объекта товара.
func (r ProductRef) Resolved() bool {
	return r.Product != nil
}

// FileIdentifiers возвращает идентификаторы файлов раскрытого товара.
// Для голой ссылки возвращает nil и false: такая запись не даёт ничего
// и должна быть пропущена вызывающей стороной, не прерывая обход.
func (r ProductRef) FileIdentifiers() ([]string, bool) {
	if r.Product == nil {
		return nil, false
	}
	return r.Product.FileIDs, true
}

// DummyCheckout используется для приёма корзины из JSON-запроса.
type DummyCheckout struct {
	ProductIDs []string `json:"product_ids" validate:"required,dive,uuid"` // Идентификаторы товаров
}
