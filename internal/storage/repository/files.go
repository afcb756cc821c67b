package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ogenyiken/zikistore/internal/models"
)

// CreateFile регистрирует метаданные загруженного файла и возвращает его ID.
// Владелец задаётся вызывающей стороной из контекста аутентификации.
func (s *Storage) CreateFile(ctx context.Context, file models.File) (string, error) {
	const op = "storage.CreateFile"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO files (user_uid, name, mime_type, size)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		file.UserUID, file.Name, file.MimeType, file.Size).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetFile возвращает метаданные файла по его ID.
func (s *Storage) GetFile(ctx context.Context, id string) (*models.File, error) {
	const op = "storage.GetFile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, mime_type, size, created_at
			  FROM files
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var f models.File
	if err := row.Scan(&f.ID, &f.UserUID, &f.Name, &f.MimeType, &f.Size, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &f, nil
}

// ListOwnedFileIDs возвращает идентификаторы файлов, доступных пользователю
// как владельцу: загруженные им напрямую и входящие в его товары.
// Дубликаты схлопываются на стороне базы.
func (s *Storage) ListOwnedFileIDs(ctx context.Context, userUID string) ([]string, error) {
	const op = "storage.ListOwnedFileIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT f.id
			  FROM files f
			  WHERE f.user_uid = $1
			  UNION
			  SELECT pf.file_id
			  FROM product_files pf
			  JOIN products p ON p.id = pf.product_id
			  WHERE p.user_uid = $1`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
