package paymentprovider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "app-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "secret", r.Header.Get("x-client-secret"))

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "order-1", req.OrderID)
		assert.Equal(t, "INR", req.OrderCurrency)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateOrderResponse{
			OrderID:          req.OrderID,
			PaymentSessionID: "session-xyz",
			OrderStatus:      "ACTIVE",
		})
	}))
	defer srv.Close()

	client := NewClient("app-id", "secret", srv.URL)
	resp, err := client.CreateOrderSession(CreateOrderRequest{
		OrderID:       "order-1",
		OrderAmount:   699.00,
		OrderCurrency: "INR",
		CustomerDetails: CustomerDetails{
			CustomerID:    "uid-1",
			CustomerEmail: "user@example.com",
			CustomerName:  "User",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "session-xyz", resp.PaymentSessionID)
}

func TestCreateOrderSession_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("app-id", "bad-secret", srv.URL)
	_, err := client.CreateOrderSession(CreateOrderRequest{OrderID: "order-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}

func TestGetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/orders/order-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(OrderStatusResponse{
			OrderID:     "order-1",
			OrderStatus: "PAID",
			CFPaymentID: "pay-42",
		})
	}))
	defer srv.Close()

	client := NewClient("app-id", "secret", srv.URL)
	resp, err := client.GetOrder("order-1")
	require.NoError(t, err)
	assert.True(t, resp.Paid())
	assert.Equal(t, "pay-42", resp.CFPaymentID)
}

func TestOrderStatusResponse_Paid(t *testing.T) {
	tests := []struct {
		name string
		resp OrderStatusResponse
		want bool
	}{
		{name: "order status PAID", resp: OrderStatusResponse{OrderStatus: "PAID"}, want: true},
		{name: "payment status SUCCESS", resp: OrderStatusResponse{OrderStatus: "ACTIVE", PaymentStatus: "SUCCESS"}, want: true},
		{name: "payment status PAID", resp: OrderStatusResponse{PaymentStatus: "PAID"}, want: true},
		{name: "active without payment", resp: OrderStatusResponse{OrderStatus: "ACTIVE"}, want: false},
		{name: "expired", resp: OrderStatusResponse{OrderStatus: "EXPIRED", PaymentStatus: "FAILED"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Paid())
		})
	}
}
