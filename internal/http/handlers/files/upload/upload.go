// Package upload обрабатывает регистрацию загруженных файлов.
package upload

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ogenyiken/zikistore/internal/http/middlewarectx"
	"github.com/ogenyiken/zikistore/internal/http/response"
	"github.com/ogenyiken/zikistore/internal/lib/sl"
	"github.com/ogenyiken/zikistore/internal/models"
)

// Service определяет интерфейс регистрации файлов.
type Service interface {
	Register(ctx context.Context, user *models.User, dummy models.DummyFile) (string, error)
}

// Handler обрабатывает запросы на загрузку файлов.
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
// @Summary Зарегистрировать файл
// @Description Сохраняет метаданные загруженного файла. Владельцем становится
// @Description аутентифицированный пользователь независимо от тела запроса.
// @Tags Files
// @Accept  json
// @Produce  json
// @Param request body models.DummyFile true "Метаданные файла"
// @Success 200 {object} map[string]any "Файл зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /files [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyFile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.filesService.Register(r.Context(), user, req)
	if err != nil {
		log.Error("failed to register file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("file registered", slog.String("file_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"file_id": id,
	}))
}
