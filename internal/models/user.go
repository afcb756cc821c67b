// Package models содержит доменные структуры магазина цифровых товаров:
// пользователей, товары, файлы и заказы, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string // Уникальный идентификатор пользователя
	Email        string // Электронная почта
	Username     string // Имя пользователя (уникальное)
	PasswordHash string // Хэш пароля пользователя
	Role         string // Роль пользователя, admin или user
}

// IsAdmin сообщает, имеет ли пользователь административную роль.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
