// Package webhook реализует HTTP-обработчик уведомлений платёжного провайдера.
//
// Подпись тела проверяется до разбора JSON: провайдер подписывает сырые
// байты HMAC-SHA256 и передаёт подпись в base64 в заголовке.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/paymentprovider"
)

// SignatureHeader заголовок с подписью тела webhook-а.
const SignatureHeader = "x-webhook-signature"

// Handler управляет webhook-уведомлениями провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// Service описывает интерфейс бизнес-логики активации оплат.
type Service interface {
	HandleWebhook(ctx context.Context, orderID, paymentID, status string) error
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// Payload структура уведомления провайдера.
type Payload struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			CFPaymentID   string `json:"cf_payment_id"`
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

// ServeHTTP godoc
// @Summary Webhook платёжного провайдера
// @Description Принимает уведомление об изменении статуса оплаты. Требует валидную HMAC-подпись.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Param x-webhook-signature header string true "HMAC-SHA256 подпись тела в base64"
// @Success 200 {object} response.Response "Уведомление обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Router /checkout/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if !paymentprovider.VerifySignature(h.webhookSecret, body, signature) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to decode payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	// Провайдер не всегда присылает cf_payment_id, тогда в качестве
	// идентификатора платежа сохраняется идентификатор заказа.
	paymentID := payload.Data.Payment.CFPaymentID
	if paymentID == "" {
		paymentID = payload.Data.Order.OrderID
	}

	err = h.service.HandleWebhook(r.Context(),
		payload.Data.Order.OrderID,
		paymentID,
		payload.Data.Payment.PaymentStatus)
	if err != nil {
		log.Error("failed to handle webhook", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process webhook"))
		return
	}

	log.Info("webhook processed",
		slog.String("order_id", payload.Data.Order.OrderID),
		slog.String("payment_status", payload.Data.Payment.PaymentStatus))
	render.JSON(w, r, response.StatusOKWithData(nil))
}
