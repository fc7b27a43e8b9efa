// Package step реализует HTTP-обработчик шага мастера заполнения анкеты.
//
// Каждый шаг отправляет собственный набор полей и сохраняется отдельно,
// прерванный мастер продолжается с места остановки.
package step

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/middlewarectx"
	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
	profileservice "github.com/lovebug/backend/internal/services/profile"
)

// Handler управляет HTTP-запросами шагов мастера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики мастера анкеты.
type Service interface {
	SaveStep(ctx context.Context, userUID, step string, req models.DummyStep) (*models.Profile, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сохранить шаг мастера анкеты
// @Description Применяет данные одного шага мастера к анкете пользователя.
// @Tags Profiles
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param step path string true "Шаг мастера" Enums(gender, basic, photos, bio, interests, location)
// @Param request body models.DummyStep true "Данные шага"
// @Success 200 {object} response.Response "Обновлённая анкета"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Нарушение правил шага"
// @Router /profile/steps/{step} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.step"
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

	step := chi.URLParam(r, "step")

	var req models.DummyStep
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	profile, err := h.service.SaveStep(r.Context(), userUID, step, req)
	if err != nil {
		switch {
		case errors.Is(err, profileservice.ErrUnknownStep):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown wizard step"))
		case errors.Is(err, profileservice.ErrUnderage),
			errors.Is(err, profileservice.ErrNoPhotos),
			errors.Is(err, profileservice.ErrFewInterests):
			log.Error("step validation failed", slog.String("step", step), sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to save step", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not save step"))
		}
		return
	}

	log.Info("wizard step saved", slog.String("step", step))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"profile":  profile,
		"complete": profile.Complete(),
	}))
}
