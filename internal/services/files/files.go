// Package files реализует загрузку файлов и выдачу их с проверкой прав чтения.
package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/storage/repository"
)

var (
	// ErrForbidden возвращается при попытке читать файл без прав.
	ErrForbidden = errors.New("access to file denied")
	// ErrFileNotFound возвращается для несуществующего файла.
	ErrFileNotFound = errors.New("file not found")
)

// Repository определяет методы хранилища для работы с файлами.
type Repository interface {
	CreateFile(ctx context.Context, file models.File) (string, error)
	GetFile(ctx context.Context, id string) (*models.File, error)
}

// Authorizer вычисляет набор файлов, которые пользователь может читать.
type Authorizer interface {
	ResolveReadable(ctx context.Context, user *models.User) (models.FileFilter, error)
}

// Service реализует бизнес-логику работы с файлами.
type Service struct {
	repo       Repository
	authorizer Authorizer
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, authorizer Authorizer, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		log:        log,
	}
}

// Register сохраняет метаданные загруженного файла. Владелец берётся
// из аутентифицированного пользователя, значение из тела запроса игнорируется.
func (s *Service) Register(ctx context.Context, user *models.User, dummy models.DummyFile) (string, error) {
	const op = "files.Register"

	file := models.File{
		UserUID:  user.UUID,
		Name:     dummy.Name,
		MimeType: dummy.MimeType,
		Size:     dummy.Size,
	}
	id, err := s.repo.CreateFile(ctx, file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("file registered",
		slog.String("file_id", id), slog.String("owner_uid", user.UUID))
	return id, nil
}

// Download возвращает метаданные файла, если пользователь имеет право
// его читать: как владелец, как покупатель или как администратор.
func (s *Service) Download(ctx context.Context, user *models.User, fileID string) (*models.File, error) {
	const op = "files.Download"

	filter, err := s.authorizer.ResolveReadable(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !filter.Allows(fileID) {
		return nil, ErrForbidden
	}

	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return file, nil
}
