// Package uservisibility реализует HTTP-обработчик управления видимостью
// чужой анкеты из панели администратора.
package uservisibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
)

// Handler управляет HTTP-запросами видимости анкет.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики видимости анкеты.
type Service interface {
	SetActive(ctx context.Context, userUID string, active bool) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Request тело запроса на переключение видимости.
type Request struct {
	IsActive bool `json:"is_active"`
}

// ServeHTTP godoc
// @Summary Включить или скрыть анкету пользователя
// @Description Администратор убирает анкету из поиска или возвращает её.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param user_uid path string true "uid пользователя"
// @Param request body Request true "Новая видимость"
// @Success 200 {object} response.Response "Видимость обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 404 {object} response.ErrorResponse "Анкета не найдена"
// @Router /admin/users/{user_uid}/visibility [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.uservisibility"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetUID := chi.URLParam(r, "user_uid")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.SetActive(r.Context(), targetUID, req.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("profile not found"))
			return
		}
		log.Error("failed to update visibility", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update visibility"))
		return
	}

	log.Info("profile visibility updated",
		slog.String("target_uid", targetUID), slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
