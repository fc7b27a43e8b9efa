// Package initiate реализует HTTP-обработчик начала оплаты премиум-плана.
//
// Handler валидирует запрос, строит пользователя из контекста и передаёт
// управление бизнес-логике оплаты. Цена определяется серверной таблицей
// планов, клиентская сумма не принимается.
package initiate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/lovebug/backend/internal/http/middlewarectx"
	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
	checkout "github.com/lovebug/backend/internal/services/checkout"
)

// Handler управляет HTTP-запросами на начало оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	users    UserProvider
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики оплаты.
type Service interface {
	Initiate(ctx context.Context, user *models.User, req models.DummyInitiate) (*checkout.InitiateResult, error)
}

// UserProvider достаёт пользователя по uid для передачи почты провайдеру.
type UserProvider interface {
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, users UserProvider) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		users:    users,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Начать оплату премиум-плана
// @Description Создает pending-заказ и платёжную сессию провайдера.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyInitiate true "План и имя плательщика"
// @Success 200 {object} map[string]any "Заказ и платёжная сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный план"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Провайдер недоступен"
// @Router /checkout/initiate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.initiate"
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

	var req models.DummyInitiate
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

	user, err := h.users.GetUserByUID(r.Context(), userUID)
	if err != nil || user == nil {
		log.Error("failed to load user", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Initiate(r.Context(), user, req)
	if err != nil {
		log.Error("failed to initiate checkout", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not start payment"))
		return
	}

	log.Info("checkout initiated", slog.String("order_id", result.OrderID))
	render.JSON(w, r, response.StatusOKWithData(result))
}
