// Package entitlement вычисляет права чтения файлов: какие файлы
// пользователь может читать как владелец и как покупатель.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogenyiken/zikistore/internal/models"
)

// cacheTTL — время жизни закешированного набора прав пользователя.
// Набор дополнительно инвалидируется при оплате заказа.
const cacheTTL = 5 * time.Minute

// Repository определяет методы хранилища, нужные для вычисления прав.
type Repository interface {
	// ListOwnedFileIDs возвращает файлы, доступные пользователю как владельцу.
	ListOwnedFileIDs(ctx context.Context, userUID string) ([]string, error)
	// ListOrdersByUser возвращает заказы пользователя с заданной глубиной разрешения.
	ListOrdersByUser(ctx context.Context, userUID string, depth int) ([]*models.Order, error)
}

// Cache описывает методы для кэширования вычисленных наборов прав.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Resolver реализует вычисление прав чтения файлов.
type Resolver struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Resolver.
func New(repo Repository, cache Cache, log *slog.Logger) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// CacheKey возвращает ключ кеша набора прав пользователя.
func CacheKey(userUID string) string {
	return fmt.Sprintf("entitlements:%s", userUID)
}

// ResolveReadable возвращает фильтр идентификаторов файлов, которые
// пользователь может читать. Администратор получает универсальный фильтр,
// анонимный запрос — пустой. Для остальных результат — объединение двух
// наборов: файлов, доступных как владельцу, и файлов из оплаченных заказов.
//
// Заказы читаются одним запросом на глубине, раскрывающей цепочку
// заказ→товар→файл. Запись заказа, в которой товар остался голым
// идентификатором, не даёт ничего: аномалия логируется, обход продолжается.
func (r *Resolver) ResolveReadable(ctx context.Context, user *models.User) (models.FileFilter, error) {
	const op = "entitlement.ResolveReadable"

	if user == nil {
		return models.FileFilter{}, nil
	}
	if user.IsAdmin() {
		return models.UniversalFileFilter(), nil
	}

	cacheKey := CacheKey(user.UUID)
	var cached models.FileFilter
	found, err := r.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		r.log.Warn("failed to read entitlements from cache",
			slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	owned, err := r.repo.ListOwnedFileIDs(ctx, user.UUID)
	if err != nil {
		return models.FileFilter{}, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := r.repo.ListOrdersByUser(ctx, user.UUID, models.DepthFiles)
	if err != nil {
		return models.FileFilter{}, fmt.Errorf("%s: %w", op, err)
	}

	purchased := r.purchasedFileIDs(orders)

	filter := models.NewFileFilter(append(owned, purchased...)...)

	if err := r.cache.Set(ctx, cacheKey, filter, cacheTTL); err != nil {
		r.log.Warn("failed to cache entitlements",
			slog.String("key", cacheKey), slog.Any("err", err))
	}
	return filter, nil
}

// InvalidateUser сбрасывает закешированный набор прав пользователя.
// Вызывается после перевода заказа в оплаченное состояние.
func (r *Resolver) InvalidateUser(ctx context.Context, userUID string) error {
	return r.cache.Invalidate(ctx, CacheKey(userUID))
}

// purchasedFileIDs извлекает идентификаторы файлов из оплаченных заказов.
// Доступ по покупке даёт только заказ с установленным флагом оплаты.
func (r *Resolver) purchasedFileIDs(orders []*models.Order) []string {
	var result []string
	for _, order := range orders {
		if !order.IsPaid {
			continue
		}
		for _, ref := range order.Products {
			fileIDs, ok := ref.FileIdentifiers()
			if !ok {
				r.log.Error("search depth not sufficient to find purchased file ids",
					slog.String("order_id", order.ID), slog.String("product_id", ref.ID))
				continue
			}
			result = append(result, fileIDs...)
		}
	}
	return result
}
