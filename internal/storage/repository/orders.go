package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ogenyiken/zikistore/internal/models"
)

// CreateOrder сохраняет новый неоплаченный заказ вместе со списком товаров
// и возвращает его ID. Заказ создаётся до обращения к платёжному провайдеру,
// поэтому сбой провайдера оставляет в базе отслеживаемую незавершённую запись.
func (s *Storage) CreateOrder(ctx context.Context, order models.Order) (string, error) {
	const op = "storage.CreateOrder"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var newID string
	query := `INSERT INTO orders (user_uid, amount, is_paid)
			  VALUES ($1, $2, FALSE)
			  RETURNING id`
	if err := tx.QueryRowContext(ctx, query, order.UserUID, order.Amount).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	linkQuery := `INSERT INTO order_products (order_id, product_id) VALUES ($1, $2)`
	for _, ref := range order.Products {
		if _, err := tx.ExecContext(ctx, linkQuery, newID, ref.ID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetOrder возвращает заказ по ID. При depth >= models.DepthFiles ссылки
// на товары раскрываются до объектов с их файлами, иначе остаются голыми ID.
func (s *Storage) GetOrder(ctx context.Context, id string, depth int) (*models.Order, error) {
	const op = "storage.GetOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	orders, err := s.queryOrders(ctx, `o.id = $1`, id, depth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return orders[0], nil
}

// ListOrdersByUser возвращает все заказы пользователя с заданной глубиной
// разрешения ссылок на товары.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string, depth int) ([]*models.Order, error) {
	const op = "storage.ListOrdersByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	orders, err := s.queryOrders(ctx, `o.user_uid = $1`, userUID, depth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// MarkOrderPaid переводит заказ в оплаченное состояние. Запись безусловная
// и идемпотентная: повторное применение true поверх true безопасно, поэтому
// дублированная доставка вебхука не требует блокировок. Возвращает число
// изменённых строк.
func (s *Storage) MarkOrderPaid(ctx context.Context, orderID string) (int, error) {
	const op = "storage.MarkOrderPaid"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders
			  SET is_paid = TRUE
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, orderID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// queryOrders выполняет выборку заказов по условию where с одним аргументом.
// При depth >= models.DepthFiles заказ раскрывается до товаров и их файлов
// за один проход по плоскому результату JOIN-запроса.
func (s *Storage) queryOrders(ctx context.Context, where string, arg any, depth int) ([]*models.Order, error) {
	if depth >= models.DepthFiles {
		query := `SELECT o.id, o.user_uid, o.amount, o.is_paid, o.created_at,
				      op.product_id, p.user_uid, p.name, p.price, pf.file_id
				  FROM orders o
				  LEFT JOIN order_products op ON op.order_id = o.id
				  LEFT JOIN products p ON p.id = op.product_id
				  LEFT JOIN product_files pf ON pf.product_id = p.id
				  WHERE ` + where + `
				  ORDER BY o.created_at, o.id, op.product_id`
		rows, err := s.DB.QueryContext(ctx, query, arg)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = rows.Close()
		}()
		return scanResolvedOrderRows(rows)
	}

	query := `SELECT o.id, o.user_uid, o.amount, o.is_paid, o.created_at, op.product_id
			  FROM orders o
			  LEFT JOIN order_products op ON op.order_id = o.id
			  WHERE ` + where + `
			  ORDER BY o.created_at, o.id, op.product_id`
	rows, err := s.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	return scanBareOrderRows(rows)
}

func scanBareOrderRows(rows *sql.Rows) ([]*models.Order, error) {
	byID := make(map[string]*models.Order)
	var order []string

	for rows.Next() {
		var (
			id, userUID string
			amount      int
			isPaid      bool
			createdAt   time.Time
			productID   sql.NullString
		)
		if err := rows.Scan(&id, &userUID, &amount, &isPaid, &createdAt, &productID); err != nil {
			return nil, err
		}

		o, ok := byID[id]
		if !ok {
			o = &models.Order{
				ID:        id,
				UserUID:   userUID,
				Amount:    amount,
				IsPaid:    isPaid,
				CreatedAt: createdAt,
			}
			byID[id] = o
			order = append(order, id)
		}
		if productID.Valid {
			o.Products = append(o.Products, models.ProductRef{ID: productID.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*models.Order, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, nil
}

func scanResolvedOrderRows(rows *sql.Rows) ([]*models.Order, error) {
	type refKey struct {
		orderID   string
		productID string
	}

	byID := make(map[string]*models.Order)
	// Для раскрытых ссылок файлы дописываются в сам объект товара,
	// он стабилен в памяти в отличие от элементов слайса Products.
	seen := make(map[refKey]*models.Product)
	var order []string

	for rows.Next() {
		var (
			id, userUID    string
			amount         int
			isPaid         bool
			createdAt      time.Time
			productID      sql.NullString
			productUserUID sql.NullString
			productName    sql.NullString
			price          sql.NullInt64
			fileID         sql.NullString
		)
		if err := rows.Scan(&id, &userUID, &amount, &isPaid, &createdAt,
			&productID, &productUserUID, &productName, &price, &fileID); err != nil {
			return nil, err
		}

		o, ok := byID[id]
		if !ok {
			o = &models.Order{
				ID:        id,
				UserUID:   userUID,
				Amount:    amount,
				IsPaid:    isPaid,
				CreatedAt: createdAt,
			}
			byID[id] = o
			order = append(order, id)
		}
		if !productID.Valid {
			continue
		}

		key := refKey{orderID: id, productID: productID.String}
		product, ok := seen[key]
		if !ok {
			if productName.Valid {
				product = &models.Product{
					ID:      productID.String,
					UserUID: productUserUID.String,
					Name:    productName.String,
				}
				if price.Valid {
					p := int(price.Int64)
					product.Price = &p
				}
			}
			seen[key] = product
			o.Products = append(o.Products, models.ProductRef{ID: productID.String, Product: product})
		}
		if product != nil && fileID.Valid {
			product.FileIDs = append(product.FileIDs, fileID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*models.Order, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, nil
}
