// Package services реализует жизненный цикл оплаты премиум-подписки:
// создание заказа, платёжную сессию у провайдера, активацию по webhook
// или по опросу статуса, отмену и просмотр истории заказов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lovebug/backend/internal/config"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/metrics"
	"github.com/lovebug/backend/internal/models"
	"github.com/lovebug/backend/internal/paymentprovider"
	"github.com/lovebug/backend/internal/plans"
)

// Ошибки жизненного цикла оплаты.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderForeign         = errors.New("order belongs to another user")
	ErrPaymentNotDone       = errors.New("payment not completed")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

// OrderRepository определяет методы хранилища для заказов и подписок.
type OrderRepository interface {
	// CreatePaymentOrder сохраняет новый заказ в статусе pending.
	CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) error
	// GetPaymentOrder возвращает заказ, nil если не найден.
	GetPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error)
	// UpdateOrderStatus переводит заказ в новый статус.
	UpdateOrderStatus(ctx context.Context, orderID, status, paymentID string) error
	// ListOrdersByUser возвращает заказы пользователя.
	ListOrdersByUser(ctx context.Context, userUID string) ([]*models.PaymentOrder, error)
	// GetActiveSubscription возвращает действующую подписку, nil если нет.
	GetActiveSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error)
	// ActivateSubscription активирует оплаченный заказ одной транзакцией.
	ActivateSubscription(ctx context.Context, sub *models.UserSubscription, paymentID string) (bool, error)
	// CancelSubscription отменяет действующую подписку.
	CancelSubscription(ctx context.Context, userUID string) (bool, error)
	// SaveUserEvent пишет событие продуктовой аналитики.
	SaveUserEvent(ctx context.Context, event *models.UserEvent) error
}

// ProviderClient описывает платёжного провайдера с hosted checkout.
type ProviderClient interface {
	// CreateOrderSession регистрирует заказ и возвращает платёжную сессию.
	CreateOrderSession(req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error)
	// GetOrder возвращает текущий статус заказа у провайдера.
	GetOrder(orderID string) (*paymentprovider.OrderStatusResponse, error)
}

// Publisher публикует сообщения в очередь уведомлений.
type Publisher interface {
	PublishMessage(exchange, routingKey string, message any) error
}

// InvoiceBuilder формирует письмо со счётом по успешному заказу.
type InvoiceBuilder interface {
	BuildMail(order *models.PaymentOrder) (*models.MailMessage, error)
}

// CheckoutService реализует бизнес-логику оплаты премиум-подписок.
type CheckoutService struct {
	repo      OrderRepository
	provider  ProviderClient
	publisher Publisher
	invoices  InvoiceBuilder
	cfg       config.PaymentProvider
	log       *slog.Logger
}

// NewCheckoutService создает новый экземпляр CheckoutService.
func NewCheckoutService(repo OrderRepository, provider ProviderClient, publisher Publisher,
	invoices InvoiceBuilder, cfg config.PaymentProvider, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		invoices:  invoices,
		cfg:       cfg,
		log:       log,
	}
}

// InitiateResult результат начала оплаты.
type InitiateResult struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	Amount           int64  `json:"amount"`
	PlanType         string `json:"plan_type"`
}

// Initiate начинает оплату: генерирует идентификатор заказа, сохраняет
// pending-заказ и только затем идёт к провайдеру за платёжной сессией.
// Цена берётся из серверной таблицы планов, клиентской сумме нет доверия.
// При отказе провайдера заказ переводится в failed и остаётся в журнале.
func (s *CheckoutService) Initiate(ctx context.Context, user *models.User, req models.DummyInitiate) (*InitiateResult, error) {
	plan, err := plans.Get(req.PlanType)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		OrderID:   uuid.New().String(),
		UserID:    user.UID,
		PlanType:  plan.Type,
		Amount:    plan.Price,
		Status:    models.OrderStatusPending,
		UserEmail: user.Email,
	}
	if err := s.repo.CreatePaymentOrder(ctx, order); err != nil {
		return nil, err
	}
	metrics.PaymentsInitiated.WithLabelValues(plan.Type).Inc()

	session, err := s.provider.CreateOrderSession(paymentprovider.CreateOrderRequest{
		OrderID:       order.OrderID,
		OrderAmount:   float64(plan.Price) / 100,
		OrderCurrency: "INR",
		OrderNote:     plan.Name,
		CustomerDetails: paymentprovider.CustomerDetails{
			CustomerID:    user.UID,
			CustomerEmail: user.Email,
			CustomerName:  req.Name,
		},
		OrderMeta: paymentprovider.OrderMeta{ReturnURL: s.cfg.ReturnURL},
	})
	if err != nil {
		s.log.Error("payment provider rejected order",
			slog.String("order_id", order.OrderID), sl.Err(err))
		if updErr := s.repo.UpdateOrderStatus(ctx, order.OrderID, models.OrderStatusFailed, ""); updErr != nil {
			s.log.Error("failed to mark order failed", sl.Err(updErr))
		}
		metrics.PaymentsFailed.WithLabelValues("provider_rejected").Inc()
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	s.log.Info("checkout initiated",
		slog.String("order_id", order.OrderID), slog.String("plan_type", plan.Type))

	return &InitiateResult{
		OrderID:          order.OrderID,
		PaymentSessionID: session.PaymentSessionID,
		Amount:           plan.Price,
		PlanType:         plan.Type,
	}, nil
}

// Activate активирует подписку по оплаченному заказу. Окно подписки
// продлевается от конца действующей подписки, если она есть, иначе от
// текущего момента. Повторная активация того же заказа безвредна.
func (s *CheckoutService) Activate(ctx context.Context, orderID, paymentID string) error {
	order, err := s.repo.GetPaymentOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status == models.OrderStatusSuccess {
		return nil
	}

	plan, err := plans.Get(order.PlanType)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	base := now
	if current, err := s.repo.GetActiveSubscription(ctx, order.UserID); err != nil {
		return err
	} else if current != nil && current.EndDate.After(now) {
		base = current.EndDate
	}

	sub := &models.UserSubscription{
		UserID:    order.UserID,
		PlanType:  plan.Type,
		StartDate: now,
		EndDate:   plan.Extend(base),
		OrderID:   order.OrderID,
	}

	activated, err := s.repo.ActivateSubscription(ctx, sub, paymentID)
	if err != nil {
		return err
	}
	if !activated {
		// Заказ успел активироваться параллельно, webhook и verify гонялись.
		return nil
	}
	metrics.PaymentsActivated.WithLabelValues(plan.Type).Inc()

	s.log.Info("subscription activated",
		slog.String("order_id", order.OrderID),
		slog.String("plan_type", plan.Type),
		slog.Time("end_date", sub.EndDate))

	order.Status = models.OrderStatusSuccess
	order.PaymentID = paymentID
	s.sendInvoice(order)
	s.trackPurchase(ctx, order, sub)
	return nil
}

// sendInvoice публикует письмо со счётом. Ошибка не валит активацию,
// оплата уже прошла.
func (s *CheckoutService) sendInvoice(order *models.PaymentOrder) {
	mail, err := s.invoices.BuildMail(order)
	if err != nil {
		s.log.Error("failed to build invoice", slog.String("order_id", order.OrderID), sl.Err(err))
		return
	}
	if err := s.publisher.PublishMessage("notifications", "invoice", mail); err != nil {
		s.log.Error("failed to publish invoice", slog.String("order_id", order.OrderID), sl.Err(err))
	}
}

// trackPurchase пишет событие аналитики о покупке, ошибки только логируются.
func (s *CheckoutService) trackPurchase(ctx context.Context, order *models.PaymentOrder, sub *models.UserSubscription) {
	event := &models.UserEvent{
		UserID:    order.UserID,
		EventType: "premium_purchased",
		EventData: map[string]any{
			"order_id":  order.OrderID,
			"plan_type": order.PlanType,
			"amount":    order.Amount,
			"end_date":  sub.EndDate.Format(time.RFC3339),
		},
	}
	if err := s.repo.SaveUserEvent(ctx, event); err != nil {
		s.log.Error("failed to save purchase event", sl.Err(err))
	}
}

// HandleWebhook обрабатывает уведомление провайдера об успешной оплате.
// Подпись уже проверена транспортным слоем.
func (s *CheckoutService) HandleWebhook(ctx context.Context, orderID, paymentID, status string) error {
	switch status {
	case "SUCCESS", "PAID":
		return s.Activate(ctx, orderID, paymentID)
	case "FAILED":
		metrics.PaymentsFailed.WithLabelValues("provider_failed").Inc()
		return s.repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusFailed, paymentID)
	default:
		s.log.Info("ignoring webhook with status", slog.String("status", status))
		return nil
	}
}

// Verify опрашивает провайдера о статусе заказа фиксированное число раз.
// Нужен возвращающемуся со страницы оплаты клиенту, когда webhook ещё не
// дошёл. Если оплата так и не подтвердилась, заказ переводится в timeout.
func (s *CheckoutService) Verify(ctx context.Context, userUID, orderID string) (*models.PaymentOrder, error) {
	order, err := s.repo.GetPaymentOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userUID {
		return nil, ErrOrderForeign
	}
	if order.Status == models.OrderStatusSuccess {
		return order, nil
	}

	for attempt := 1; attempt <= s.cfg.VerifyRetries; attempt++ {
		status, err := s.provider.GetOrder(orderID)
		if err != nil {
			s.log.Warn("provider status check failed",
				slog.Int("attempt", attempt), sl.Err(err))
		} else if status.Paid() {
			if err := s.Activate(ctx, orderID, status.CFPaymentID); err != nil {
				return nil, err
			}
			return s.repo.GetPaymentOrder(ctx, orderID)
		}

		if attempt < s.cfg.VerifyRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.VerifyDelay):
			}
		}
	}

	metrics.PaymentsFailed.WithLabelValues("verify_timeout").Inc()
	if err := s.repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusTimeout, ""); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("payment not completed for order %s: %w", orderID, ErrPaymentNotDone)
}

// SubscriptionStatus статус премиума пользователя.
type SubscriptionStatus struct {
	IsPremium    bool                     `json:"is_premium"`
	Subscription *models.UserSubscription `json:"subscription,omitempty"`
}

// Status возвращает действующую подписку пользователя.
func (s *CheckoutService) Status(ctx context.Context, userUID string) (*SubscriptionStatus, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &SubscriptionStatus{IsPremium: sub != nil, Subscription: sub}, nil
}

// Cancel отменяет действующую подписку. Премиум сохраняется до конца
// оплаченного окна, автопродления нет, так что больше ничего не меняется.
func (s *CheckoutService) Cancel(ctx context.Context, userUID string) error {
	cancelled, err := s.repo.CancelSubscription(ctx, userUID)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrNoActiveSubscription
	}
	s.log.Info("subscription cancelled", slog.String("user_uid", userUID))
	return nil
}

// Orders возвращает историю заказов пользователя.
func (s *CheckoutService) Orders(ctx context.Context, userUID string) ([]*models.PaymentOrder, error) {
	return s.repo.ListOrdersByUser(ctx, userUID)
}

// Invoice возвращает HTML-счёт успешного заказа для скачивания.
func (s *CheckoutService) Invoice(ctx context.Context, userUID, orderID string) (*models.PaymentOrder, error) {
	order, err := s.repo.GetPaymentOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userUID {
		return nil, ErrOrderForeign
	}
	if order.Status != models.OrderStatusSuccess {
		return nil, ErrPaymentNotDone
	}
	return order, nil
}
