// Package realtimemetrics реализует HTTP-обработчик живых метрик панели.
package realtimemetrics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
)

// Handler управляет HTTP-запросами живых метрик.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики живых метрик.
type Service interface {
	RealTimeMetrics(ctx context.Context) ([]*models.RealTimeMetric, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Живые метрики
// @Description Возвращает метрики, пересчитываемые планировщиком каждые 30 секунд.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список метрик"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/analytics/realtime [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.realtimemetrics"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	metrics, err := h.service.RealTimeMetrics(r.Context())
	if err != nil {
		log.Error("failed to load realtime metrics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load metrics"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(metrics))
}
