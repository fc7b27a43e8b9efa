package services

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovebug/backend/internal/models"
)

func testOrder() *models.PaymentOrder {
	return &models.PaymentOrder{
		OrderID:   "order-123",
		UserID:    "uid-1",
		PlanType:  "3_month",
		Amount:    149900,
		Status:    "success",
		PaymentID: "pay-456",
		UserEmail: "user@example.com",
	}
}

func TestRenderHTML(t *testing.T) {
	service := NewInvoiceService()

	html, err := service.RenderHTML(testOrder())

	require.NoError(t, err)
	assert.Contains(t, html, "order-123")
	assert.Contains(t, html, "pay-456")
	assert.Contains(t, html, "1499.00")
	assert.Contains(t, html, "3 month(s)")
}

func TestRenderHTML_UnknownPlan(t *testing.T) {
	service := NewInvoiceService()

	order := testOrder()
	order.PlanType = "lifetime"

	_, err := service.RenderHTML(order)

	assert.Error(t, err)
}

func TestBuildMail(t *testing.T) {
	service := NewInvoiceService()

	mail, err := service.BuildMail(testOrder())

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", mail.Email)
	assert.True(t, mail.Base64)
	assert.True(t, strings.Contains(mail.Subject, "order-123"))

	decoded, err := base64.StdEncoding.DecodeString(mail.Body)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "order-123")
}
