// Package unban реализует HTTP-обработчик снятия бана.
package unban

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/middlewarectx"
	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	moderation "github.com/lovebug/backend/internal/services/moderation"
)

// Handler управляет HTTP-запросами снятия бана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики разбана.
type Service interface {
	Unban(ctx context.Context, adminUID, targetUID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Снять бан с пользователя
// @Description Снимает активный бан, анкета возвращается в поиск.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param user_uid path string true "uid пользователя"
// @Success 200 {object} response.Response "Бан снят"
// @Failure 404 {object} response.ErrorResponse "Активного бана нет"
// @Router /admin/users/{user_uid}/unban [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.unban"
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

	targetUID := chi.URLParam(r, "user_uid")

	if err := h.service.Unban(r.Context(), adminUID, targetUID); err != nil {
		if errors.Is(err, moderation.ErrNotBanned) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user has no active ban"))
			return
		}
		log.Error("failed to unban user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not unban user"))
		return
	}

	log.Info("user unbanned", slog.String("target_uid", targetUID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
