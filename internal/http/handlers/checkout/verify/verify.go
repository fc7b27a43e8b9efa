// Package verify реализует HTTP-обработчик проверки статуса оплаты заказа.
//
// Вызывается клиентом после возвращения со страницы оплаты, когда webhook
// мог ещё не дойти. Бизнес-логика опрашивает провайдера с повторами.
package verify

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
	"github.com/lovebug/backend/internal/models"
	checkout "github.com/lovebug/backend/internal/services/checkout"
)

// Handler управляет HTTP-запросами проверки оплаты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки оплаты.
type Service interface {
	Verify(ctx context.Context, userUID, orderID string) (*models.PaymentOrder, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить статус оплаты заказа
// @Description Опрашивает провайдера и активирует подписку при успехе.
// @Tags Checkout
// @Produce  json
// @Security BearerAuth
// @Param order_id path string true "Идентификатор заказа"
// @Success 200 {object} response.Response "Заказ с текущим статусом"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден"
// @Failure 402 {object} response.ErrorResponse "Оплата не подтвердилась"
// @Router /checkout/verify/{order_id} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.verify"
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

	orderID := chi.URLParam(r, "order_id")

	order, err := h.service.Verify(r.Context(), userUID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrOrderNotFound), errors.Is(err, checkout.ErrOrderForeign):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("order not found"))
		case errors.Is(err, checkout.ErrPaymentNotDone):
			log.Info("payment not confirmed", slog.String("order_id", orderID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to verify payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify payment"))
		}
		return
	}

	log.Info("payment verified", slog.String("order_id", orderID))
	render.JSON(w, r, response.StatusOKWithData(order))
}
