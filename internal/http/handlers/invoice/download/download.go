// Package download реализует HTTP-обработчик скачивания HTML-счёта.
package download

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

// Handler управляет HTTP-запросами скачивания счёта.
type Handler struct {
	log      *slog.Logger
	service  Service
	invoices InvoiceRenderer
}

// Service отдаёт успешный заказ пользователя для счёта.
type Service interface {
	Invoice(ctx context.Context, userUID, orderID string) (*models.PaymentOrder, error)
}

// InvoiceRenderer формирует HTML-счёт по заказу.
type InvoiceRenderer interface {
	RenderHTML(order *models.PaymentOrder) (string, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, invoices InvoiceRenderer) *Handler {
	return &Handler{log: log, service: service, invoices: invoices}
}

// ServeHTTP godoc
// @Summary Скачать счёт за заказ
// @Description Возвращает HTML-счёт по успешному заказу пользователя.
// @Tags Checkout
// @Produce  html
// @Security BearerAuth
// @Param order_id path string true "Идентификатор заказа"
// @Success 200 {string} string "HTML-счёт"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заказ не найден или не оплачен"
// @Router /checkout/invoice/{order_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.download"
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

	order, err := h.service.Invoice(r.Context(), userUID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrOrderNotFound),
			errors.Is(err, checkout.ErrOrderForeign),
			errors.Is(err, checkout.ErrPaymentNotDone):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("invoice not available"))
		default:
			log.Error("failed to load order", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not load invoice"))
		}
		return
	}

	html, err := h.invoices.RenderHTML(order)
	if err != nil {
		log.Error("failed to render invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not render invoice"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=invoice-"+orderID+".html")
	_, _ = w.Write([]byte(html))
}
