package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ogenyiken/zikistore/internal/models"
)

// CreateProduct сохраняет новый товар вместе со ссылками на файлы
// и возвращает его ID.
func (s *Storage) CreateProduct(ctx context.Context, product models.Product) (string, error) {
	const op = "storage.CreateProduct"
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
	query := `INSERT INTO products (user_uid, name, price)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	if err := tx.QueryRowContext(ctx, query,
		product.UserUID, product.Name, product.Price).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	linkQuery := `INSERT INTO product_files (product_id, file_id) VALUES ($1, $2)`
	for _, fileID := range product.FileIDs {
		if _, err := tx.ExecContext(ctx, linkQuery, newID, fileID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListProductsByIDs возвращает товары по списку идентификаторов вместе
// со ссылками на их файлы. Отсутствующие идентификаторы молча пропускаются.
func (s *Storage) ListProductsByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	const op = "storage.ListProductsByIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT p.id, p.user_uid, p.name, p.price, pf.file_id
			  FROM products p
			  LEFT JOIN product_files pf ON pf.product_id = p.id
			  WHERE p.id = ANY($1)
			  ORDER BY p.id`
	rows, err := s.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	products, err := scanProductRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// scanProductRows собирает плоские строки product+file_id в список товаров.
func scanProductRows(rows *sql.Rows) ([]*models.Product, error) {
	byID := make(map[string]*models.Product)
	var order []string

	for rows.Next() {
		var (
			id, userUID, name string
			price             sql.NullInt64
			fileID            sql.NullString
		)
		if err := rows.Scan(&id, &userUID, &name, &price, &fileID); err != nil {
			return nil, err
		}

		product, ok := byID[id]
		if !ok {
			product = &models.Product{
				ID:      id,
				UserUID: userUID,
				Name:    name,
			}
			if price.Valid {
				p := int(price.Int64)
				product.Price = &p
			}
			byID[id] = product
			order = append(order, id)
		}
		if fileID.Valid {
			product.FileIDs = append(product.FileIDs, fileID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]*models.Product, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result, nil
}
