package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testSecret = "webhook-secret"

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) HandleWebhook(ctx context.Context, orderID, paymentID, status string) error {
	args := m.Called(ctx, orderID, paymentID, status)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookBody(orderID, paymentID, status string) []byte {
	payload := map[string]any{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"data": map[string]any{
			"order":   map[string]any{"order_id": orderID},
			"payment": map[string]any{"cf_payment_id": paymentID, "payment_status": status},
		},
	}
	body, _ := json.Marshal(payload)
	return body
}

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           []byte
		signature      string
		mockErr        error
		mockCall       bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid signature activates order",
			body:           webhookBody("order-1", "pay-1", "SUCCESS"),
			mockCall:       true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing signature",
			body:           webhookBody("order-1", "pay-1", "SUCCESS"),
			signature:      "skip",
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid signature",
		},
		{
			name:           "tampered body rejected",
			body:           webhookBody("order-1", "pay-1", "SUCCESS"),
			signature:      sign(testSecret, []byte(`{"other":"body"}`)),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid signature",
		},
		{
			name:           "signed garbage json",
			body:           []byte("not a json"),
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "service error",
			body:           webhookBody("order-1", "pay-1", "SUCCESS"),
			mockCall:       true,
			mockErr:        errors.New("storage down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not process webhook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock, testSecret)

			if tt.mockCall {
				serviceMock.On("HandleWebhook", mock.Anything, "order-1", "pay-1", "SUCCESS").
					Return(tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/checkout/webhook", bytes.NewReader(tt.body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			switch tt.signature {
			case "skip":
			case "":
				req.Header.Set(SignatureHeader, sign(testSecret, tt.body))
			default:
				req.Header.Set(SignatureHeader, tt.signature)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				assert.Equal(t, "Error", got["status"])
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "OK", got["status"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_MissingPaymentIDFallsBackToOrderID(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock, testSecret)

	serviceMock.On("HandleWebhook", mock.Anything, "order-1", "order-1", "SUCCESS").
		Return(nil).Once()

	body := webhookBody("order-1", "", "SUCCESS")
	req := httptest.NewRequest(http.MethodPost, "/checkout/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(testSecret, body))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	serviceMock.AssertExpectations(t)
}
