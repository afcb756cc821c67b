package models

import "time"

// File представляет метаданные загруженного бинарного файла.
// Владелец проставляется автоматически при регистрации файла и
// всегда имеет право на чтение.
type File struct {
	ID        string    // Уникальный идентификатор файла
	UserUID   string    // UID загрузившего пользователя (владельца)
	Name      string    // Имя файла
	MimeType  string    // MIME-тип содержимого
	Size      int64     // Размер в байтах
	CreatedAt time.Time // Дата загрузки
}

// DummyFile используется для приёма метаданных файла из JSON-запроса.
// Владелец в запросе не передаётся — он берётся из контекста аутентификации.
type DummyFile struct {
	Name     string `json:"name" validate:"required,min=1,max=255"` // Имя файла
	MimeType string `json:"mime_type" validate:"required"`          // MIME-тип
	Size     int64  `json:"size" validate:"required,gt=0"`          // Размер в байтах
}
