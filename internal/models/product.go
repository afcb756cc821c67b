package models

// Product представляет товар магазина. Товар принадлежит ровно одному
// продавцу и ссылается на ноль или более загруженных файлов.
// Price хранится в основной валютной единице; nil означает, что цена
// не назначена и товар нельзя купить.
type Product struct {
	ID      string   // Уникальный идентификатор товара
	UserUID string   // UID продавца-владельца
	Name    string   // Название товара
	Price   *int     // Цена в основной единице валюты, nil — товар не продаётся
	FileIDs []string // Идентификаторы файлов, входящих в товар
}

// DummyProduct используется для приёма данных о новом товаре из JSON-запроса.
type DummyProduct struct {
	Name    string   `json:"name" validate:"required,min=1,max=200"`  // Название товара
	Price   *int     `json:"price" validate:"omitempty,gte=0"`        // Цена (опционально)
	FileIDs []string `json:"file_ids" validate:"required,min=1,dive,uuid"` // Файлы товара
}
