// Package userlist реализует HTTP-обработчик списка анкет для панели администратора.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
)

// Handler управляет HTTP-запросами списка анкет.
type Handler struct {
	log  *slog.Logger
	repo Repository
}

// Repository отдаёт страницу всех анкет.
type Repository interface {
	ListAllProfiles(ctx context.Context, search string, limit, offset int) ([]*models.Profile, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, repo Repository) *Handler {
	return &Handler{log: log, repo: repo}
}

// ServeHTTP godoc
// @Summary Все анкеты платформы
// @Description Возвращает страницу анкет, включая скрытые и забаненные.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param search query string false "Фильтр по имени или локации"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список анкет"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	search := r.URL.Query().Get("search")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	profiles, err := h.repo.ListAllProfiles(r.Context(), search, limit, offset)
	if err != nil {
		log.Error("failed to list profiles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list profiles"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(profiles))
}
