// Package services формирует HTML-счета за оплаченные подписки.
// Счёт кодируется в base64 и отправляется почтовым воркером как вложение
// письма, поэтому генерация не зависит от SMTP.
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/lovebug/backend/internal/models"
	"github.com/lovebug/backend/internal/plans"
)

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.OrderID}}</title></head>
<body style="font-family: sans-serif; color: #222;">
  <h1>lovebug</h1>
  <h2>Payment Invoice</h2>
  <table cellpadding="6">
    <tr><td>Invoice for order</td><td><b>{{.OrderID}}</b></td></tr>
    <tr><td>Date</td><td>{{.Date}}</td></tr>
    <tr><td>Plan</td><td>{{.PlanName}}</td></tr>
    <tr><td>Period</td><td>{{.Months}} month(s)</td></tr>
    <tr><td>Amount paid</td><td><b>&#8377;{{.Amount}}</b></td></tr>
    <tr><td>Payment reference</td><td>{{.PaymentID}}</td></tr>
  </table>
  <p>Thank you for going premium. This is an automatically generated invoice.</p>
</body>
</html>`))

type invoiceData struct {
	OrderID   string
	Date      string
	PlanName  string
	Months    int
	Amount    string
	PaymentID string
}

// InvoiceService формирует счета и письма для отправки плательщику.
type InvoiceService struct{}

// NewInvoiceService создает новый экземпляр InvoiceService.
func NewInvoiceService() *InvoiceService {
	return &InvoiceService{}
}

// RenderHTML формирует HTML-счёт по успешному заказу.
func (s *InvoiceService) RenderHTML(order *models.PaymentOrder) (string, error) {
	plan, err := plans.Get(order.PlanType)
	if err != nil {
		return "", err
	}

	data := invoiceData{
		OrderID:   order.OrderID,
		Date:      time.Now().UTC().Format("02 Jan 2006"),
		PlanName:  plan.Name,
		Months:    plan.DurationMonths,
		Amount:    fmt.Sprintf("%.2f", float64(order.Amount)/100),
		PaymentID: order.PaymentID,
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildMail формирует письмо со счётом: HTML кодируется в base64,
// чтобы тело пережило транспорт через очередь без порчи кодировки.
func (s *InvoiceService) BuildMail(order *models.PaymentOrder) (*models.MailMessage, error) {
	html, err := s.RenderHTML(order)
	if err != nil {
		return nil, err
	}
	return &models.MailMessage{
		Email:   order.UserEmail,
		Subject: fmt.Sprintf("Your lovebug premium invoice %s", order.OrderID),
		Body:    base64.StdEncoding.EncodeToString([]byte(html)),
		Base64:  true,
	}, nil
}
