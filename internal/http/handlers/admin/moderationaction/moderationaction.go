// Package moderationaction реализует HTTP-обработчик решения по жалобе.
//
// Одним запросом администратор закрывает жалобу: approve и remove помечают
// её решённой, dismiss отклоняет, ban дополнительно банит нарушителя и
// скрывает его анкету.
package moderationaction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/lovebug/backend/internal/http/middlewarectx"
	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
	moderation "github.com/lovebug/backend/internal/services/moderation"
)

// Handler управляет HTTP-запросами решений по жалобам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики модерации.
type Service interface {
	Resolve(ctx context.Context, adminUID string, reportID int, req models.DummyModerationAction) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Решение по жалобе
// @Description Применяет действие администратора к жалобе из очереди.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param report_id path int true "Идентификатор жалобы"
// @Param request body models.DummyModerationAction true "Действие и комментарий"
// @Success 200 {object} response.Response "Жалоба закрыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Жалоба не найдена"
// @Failure 409 {object} response.ErrorResponse "Жалоба уже закрыта"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/moderation/reports/{report_id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.moderationaction"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || adminUID == "" {
		log.Error("admin uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	reportID, err := strconv.Atoi(chi.URLParam(r, "report_id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid report id"))
		return
	}

	var req models.DummyModerationAction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
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

	if err := h.service.Resolve(r.Context(), adminUID, reportID, req); err != nil {
		switch {
		case errors.Is(err, moderation.ErrReportNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("report not found"))
		case errors.Is(err, moderation.ErrReportResolved):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("report already resolved"))
		default:
			log.Error("failed to resolve report", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resolve report"))
		}
		return
	}

	log.Info("report resolved",
		slog.Int("report_id", reportID), slog.String("action", req.Action))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
