// Package download обрабатывает выдачу файлов с проверкой прав чтения.
package download

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ogenyiken/zikistore/internal/http/middlewarectx"
	"github.com/ogenyiken/zikistore/internal/http/response"
	"github.com/ogenyiken/zikistore/internal/lib/sl"
	"github.com/ogenyiken/zikistore/internal/models"
	"github.com/ogenyiken/zikistore/internal/services/files"
)

// Service определяет интерфейс выдачи файлов.
type Service interface {
	Download(ctx context.Context, user *models.User, fileID string) (*models.File, error)
}

// Handler обрабатывает запросы на чтение файлов.
type Handler struct {
	log          *slog.Logger
	filesService Service
	validate     *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, filesService Service) *Handler {
	return &Handler{
		log:          log,
		filesService: filesService,
		validate:     validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Получить файл
// @Description Возвращает метаданные файла, если пользователь имеет право его читать:
// @Description как владелец, как покупатель оплаченного заказа или как администратор.
// @Tags Files
// @Produce  json
// @Param id path string true "Идентификатор файла"
// @Success 200 {object} map[string]any "Метаданные файла"
// @Failure 403 {object} response.ErrorResponse "Нет прав на чтение"
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files/{id} [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())

	fileID := chi.URLParam(r, "id")
	if err := h.validate.Var(fileID, "required,uuid"); err != nil {
		log.Error("invalid file id", slog.String("file_id", fileID))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid file id"))
		return
	}

	file, err := h.filesService.Download(r.Context(), user, fileID)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrForbidden):
			log.Error("access to file denied", slog.String("file_id", fileID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		case errors.Is(err, files.ErrFileNotFound):
			log.Error("file not found", slog.String("file_id", fileID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("file not found"))
		default:
			log.Error("failed to read file", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"file_id":   file.ID,
		"name":      file.Name,
		"mime_type": file.MimeType,
		"size":      file.Size,
	}))
}
