// Package visibility реализует HTTP-обработчик переключения видимости анкеты.
package visibility

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/middlewarectx"
	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
)

// Handler управляет HTTP-запросами на смену видимости анкеты.
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

type request struct {
	IsActive bool `json:"is_active"`
}

// ServeHTTP godoc
// @Summary Переключить видимость анкеты
// @Description Скрывает анкету из поиска или возвращает её обратно.
// @Tags Profiles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body object true "Флаг видимости"
// @Success 200 {object} response.Response "Видимость обновлена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /profile/visibility [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.visibility"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.SetActive(r.Context(), userUID, req.IsActive); err != nil {
		log.Error("failed to set visibility", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update visibility"))
		return
	}

	log.Info("visibility updated", slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"is_active": req.IsActive,
	}))
}
