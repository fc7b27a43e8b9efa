// Package analyticsoverview реализует HTTP-обработчик сводки панели администратора.
package analyticsoverview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	analytics "github.com/lovebug/backend/internal/services/analytics"
)

// Handler управляет HTTP-запросами сводки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики аналитики.
type Service interface {
	GetOverview(ctx context.Context) (*analytics.Overview, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка по платформе и выручке
// @Description Возвращает агрегаты для главного экрана панели администратора.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сводка"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/analytics/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.analyticsoverview"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	overview, err := h.service.GetOverview(r.Context())
	if err != nil {
		log.Error("failed to load analytics overview", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load analytics"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(overview))
}
