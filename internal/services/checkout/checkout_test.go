package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lovebug/backend/internal/config"
	"github.com/lovebug/backend/internal/models"
	"github.com/lovebug/backend/internal/paymentprovider"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) error {
	return m.Called(ctx, order).Error(0)
}
func (m *RepoMock) GetPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentOrder), args.Error(1)
}
func (m *RepoMock) UpdateOrderStatus(ctx context.Context, orderID, status, paymentID string) error {
	return m.Called(ctx, orderID, status, paymentID).Error(0)
}
func (m *RepoMock) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.PaymentOrder, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PaymentOrder), args.Error(1)
}
func (m *RepoMock) GetActiveSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}
func (m *RepoMock) ActivateSubscription(ctx context.Context, sub *models.UserSubscription, paymentID string) (bool, error) {
	args := m.Called(ctx, sub, paymentID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) CancelSubscription(ctx context.Context, userUID string) (bool, error) {
	args := m.Called(ctx, userUID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) SaveUserEvent(ctx context.Context, event *models.UserEvent) error {
	return m.Called(ctx, event).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateOrderSession(req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CreateOrderResponse), args.Error(1)
}
func (m *ProviderMock) GetOrder(orderID string) (*paymentprovider.OrderStatusResponse, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.OrderStatusResponse), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishMessage(exchange, routingKey string, message any) error {
	return m.Called(exchange, routingKey, message).Error(0)
}

type InvoiceMock struct{ mock.Mock }

func (m *InvoiceMock) BuildMail(order *models.PaymentOrder) (*models.MailMessage, error) {
	args := m.Called(order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MailMessage), args.Error(1)
}

func newTestService(repo *RepoMock, provider *ProviderMock, publisher *PublisherMock, invoices *InvoiceMock) *CheckoutService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.PaymentProvider{
		ReturnURL:     "https://lovebug.app/payment/success",
		VerifyRetries: 3,
		VerifyDelay:   time.Millisecond,
	}
	return NewCheckoutService(repo, provider, publisher, invoices, cfg, log)
}

func testUser() *models.User {
	return &models.User{
		UID:      "11111111-1111-1111-1111-111111111111",
		Email:    "user@example.com",
		Username: "testuser",
		Role:     "user",
	}
}

func TestInitiate_CreatesPendingOrderBeforeProvider(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	svc := newTestService(repo, provider, new(PublisherMock), new(InvoiceMock))

	var created *models.PaymentOrder
	repo.On("CreatePaymentOrder", mock.Anything, mock.AnythingOfType("*models.PaymentOrder")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.PaymentOrder)
		}).Return(nil)
	provider.On("CreateOrderSession", mock.MatchedBy(func(req paymentprovider.CreateOrderRequest) bool {
		// Сумма берётся из серверной таблицы планов.
		return req.OrderAmount == 699.00 && req.OrderCurrency == "INR"
	})).Return(&paymentprovider.CreateOrderResponse{PaymentSessionID: "session-1"}, nil)

	result, err := svc.Initiate(context.Background(), testUser(), models.DummyInitiate{
		PlanType: "1_month",
		Name:     "Test User",
	})
	require.NoError(t, err)

	assert.Equal(t, "session-1", result.PaymentSessionID)
	assert.Equal(t, int64(69900), result.Amount)
	require.NotNil(t, created)
	assert.Equal(t, models.OrderStatusPending, created.Status)
	assert.Equal(t, created.OrderID, result.OrderID)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestInitiate_UnknownPlan(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	svc := newTestService(repo, provider, new(PublisherMock), new(InvoiceMock))

	_, err := svc.Initiate(context.Background(), testUser(), models.DummyInitiate{
		PlanType: "lifetime",
		Name:     "Test User",
	})
	require.Error(t, err)
	repo.AssertNotCalled(t, "CreatePaymentOrder", mock.Anything, mock.Anything)
}

func TestInitiate_ProviderFailureMarksOrderFailed(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	svc := newTestService(repo, provider, new(PublisherMock), new(InvoiceMock))

	repo.On("CreatePaymentOrder", mock.Anything, mock.Anything).Return(nil)
	provider.On("CreateOrderSession", mock.Anything).Return(nil, errors.New("gateway down"))
	repo.On("UpdateOrderStatus", mock.Anything, mock.AnythingOfType("string"),
		models.OrderStatusFailed, "").Return(nil)

	_, err := svc.Initiate(context.Background(), testUser(), models.DummyInitiate{
		PlanType: "3_month",
		Name:     "Test User",
	})
	require.Error(t, err)
	// Заказ остаётся в журнале даже при отказе провайдера.
	repo.AssertExpectations(t)
}

func pendingOrder() *models.PaymentOrder {
	return &models.PaymentOrder{
		OrderID:   "order-1",
		UserID:    "11111111-1111-1111-1111-111111111111",
		PlanType:  "1_month",
		Amount:    69900,
		Status:    models.OrderStatusPending,
		UserEmail: "user@example.com",
	}
}

func TestActivate_FreshSubscriptionStartsNow(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	invoices := new(InvoiceMock)
	svc := newTestService(repo, new(ProviderMock), publisher, invoices)

	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(pendingOrder(), nil)
	repo.On("GetActiveSubscription", mock.Anything, mock.Anything).Return(nil, nil)

	var activatedSub *models.UserSubscription
	repo.On("ActivateSubscription", mock.Anything, mock.AnythingOfType("*models.UserSubscription"), "pay-1").
		Run(func(args mock.Arguments) {
			activatedSub = args.Get(1).(*models.UserSubscription)
		}).Return(true, nil)
	invoices.On("BuildMail", mock.Anything).Return(&models.MailMessage{Email: "user@example.com"}, nil)
	publisher.On("PublishMessage", "notifications", "invoice", mock.Anything).Return(nil)
	repo.On("SaveUserEvent", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Activate(context.Background(), "order-1", "pay-1"))

	require.NotNil(t, activatedSub)
	assert.WithinDuration(t, time.Now().UTC(), activatedSub.StartDate, 5*time.Second)
	assert.WithinDuration(t, activatedSub.StartDate.Add(30*24*time.Hour), activatedSub.EndDate, 5*time.Second)
	repo.AssertExpectations(t)
}

func TestActivate_ExtendsFromCurrentSubscriptionEnd(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	invoices := new(InvoiceMock)
	svc := newTestService(repo, new(ProviderMock), publisher, invoices)

	currentEnd := time.Now().UTC().Add(10 * 24 * time.Hour)
	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(pendingOrder(), nil)
	repo.On("GetActiveSubscription", mock.Anything, mock.Anything).
		Return(&models.UserSubscription{EndDate: currentEnd, Status: models.SubscriptionStatusActive}, nil)

	var activatedSub *models.UserSubscription
	repo.On("ActivateSubscription", mock.Anything, mock.Anything, "pay-1").
		Run(func(args mock.Arguments) {
			activatedSub = args.Get(1).(*models.UserSubscription)
		}).Return(true, nil)
	invoices.On("BuildMail", mock.Anything).Return(&models.MailMessage{}, nil)
	publisher.On("PublishMessage", "notifications", "invoice", mock.Anything).Return(nil)
	repo.On("SaveUserEvent", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Activate(context.Background(), "order-1", "pay-1"))

	// Новое окно продлевает действующее, а не заменяет его.
	require.NotNil(t, activatedSub)
	assert.Equal(t, currentEnd.Add(30*24*time.Hour), activatedSub.EndDate)
}

func TestActivate_AlreadySuccessfulOrderIsNoop(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(ProviderMock), new(PublisherMock), new(InvoiceMock))

	order := pendingOrder()
	order.Status = models.OrderStatusSuccess
	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(order, nil)

	require.NoError(t, svc.Activate(context.Background(), "order-1", "pay-1"))
	repo.AssertNotCalled(t, "ActivateSubscription", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivate_InvoiceFailureDoesNotFailActivation(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	invoices := new(InvoiceMock)
	svc := newTestService(repo, new(ProviderMock), publisher, invoices)

	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(pendingOrder(), nil)
	repo.On("GetActiveSubscription", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("ActivateSubscription", mock.Anything, mock.Anything, "pay-1").Return(true, nil)
	invoices.On("BuildMail", mock.Anything).Return(nil, errors.New("template broken"))
	repo.On("SaveUserEvent", mock.Anything, mock.Anything).Return(errors.New("analytics down"))

	require.NoError(t, svc.Activate(context.Background(), "order-1", "pay-1"))
	publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_ActivatesWhenProviderConfirms(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	publisher := new(PublisherMock)
	invoices := new(InvoiceMock)
	svc := newTestService(repo, provider, publisher, invoices)

	order := pendingOrder()
	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(order, nil)
	provider.On("GetOrder", "order-1").
		Return(&paymentprovider.OrderStatusResponse{OrderStatus: "PAID", CFPaymentID: "pay-9"}, nil)
	repo.On("GetActiveSubscription", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("ActivateSubscription", mock.Anything, mock.Anything, "pay-9").Return(true, nil)
	invoices.On("BuildMail", mock.Anything).Return(&models.MailMessage{}, nil)
	publisher.On("PublishMessage", "notifications", "invoice", mock.Anything).Return(nil)
	repo.On("SaveUserEvent", mock.Anything, mock.Anything).Return(nil)

	got, err := svc.Verify(context.Background(), order.UserID, "order-1")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestVerify_TimeoutAfterRetries(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)
	svc := newTestService(repo, provider, new(PublisherMock), new(InvoiceMock))

	order := pendingOrder()
	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(order, nil)
	provider.On("GetOrder", "order-1").
		Return(&paymentprovider.OrderStatusResponse{OrderStatus: "ACTIVE"}, nil).Times(3)
	repo.On("UpdateOrderStatus", mock.Anything, "order-1", models.OrderStatusTimeout, "").Return(nil)

	_, err := svc.Verify(context.Background(), order.UserID, "order-1")
	require.ErrorIs(t, err, ErrPaymentNotDone)
	// Пользователь уносит ошибку в поддержку, идентификатор заказа обязан быть в ней.
	require.Contains(t, err.Error(), "order-1")
	provider.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestVerify_ForeignOrderRejected(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(ProviderMock), new(PublisherMock), new(InvoiceMock))

	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(pendingOrder(), nil)

	_, err := svc.Verify(context.Background(), "someone-else", "order-1")
	require.ErrorIs(t, err, ErrOrderForeign)
}

func TestHandleWebhook_FailedStatus(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(ProviderMock), new(PublisherMock), new(InvoiceMock))

	repo.On("UpdateOrderStatus", mock.Anything, "order-1", models.OrderStatusFailed, "pay-1").Return(nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "order-1", "pay-1", "FAILED"))
	repo.AssertExpectations(t)
}

func TestHandleWebhook_UnknownStatusIgnored(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(ProviderMock), new(PublisherMock), new(InvoiceMock))

	require.NoError(t, svc.HandleWebhook(context.Background(), "order-1", "pay-1", "USER_DROPPED"))
	repo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(ProviderMock), new(PublisherMock), new(InvoiceMock))

	repo.On("CancelSubscription", mock.Anything, "uid-1").Return(true, nil).Once()
	require.NoError(t, svc.Cancel(context.Background(), "uid-1"))

	repo.On("CancelSubscription", mock.Anything, "uid-2").Return(false, nil).Once()
	err := svc.Cancel(context.Background(), "uid-2")
	require.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestInvoice_OnlySuccessfulOwnOrders(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, new(ProviderMock), new(PublisherMock), new(InvoiceMock))

	order := pendingOrder()
	repo.On("GetPaymentOrder", mock.Anything, "order-1").Return(order, nil)

	_, err := svc.Invoice(context.Background(), order.UserID, "order-1")
	require.ErrorIs(t, err, ErrPaymentNotDone)

	_, err = svc.Invoice(context.Background(), "someone-else", "order-1")
	require.ErrorIs(t, err, ErrOrderForeign)
}
