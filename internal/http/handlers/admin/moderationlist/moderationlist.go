// Package moderationlist реализует HTTP-обработчик очереди модерации.
package moderationlist

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

// Handler управляет HTTP-запросами очереди модерации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики модерации.
type Service interface {
	ListReports(ctx context.Context, status string, limit, offset int) ([]*models.Report, error)
	Stats(ctx context.Context) (*models.ModerationStats, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Очередь модерации
// @Description Возвращает жалобы с фильтром по статусу и сводную статистику.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу" Enums(pending, resolved, dismissed, banned)
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Жалобы и статистика"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/moderation/reports [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.moderationlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reports, err := h.service.ListReports(r.Context(), status, limit, offset)
	if err != nil {
		log.Error("failed to list reports", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reports"))
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to load moderation stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load moderation stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reports": reports,
		"stats":   stats,
	}))
}
