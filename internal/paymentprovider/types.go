package paymentprovider

// CustomerDetails данные плательщика для предзаполнения формы оплаты.
type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// OrderMeta дополнительные параметры заказа.
type OrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
}

// CreateOrderRequest запрос на регистрацию заказа у провайдера.
// Сумма в основных единицах валюты (рупии, не пайсы).
type CreateOrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderNote       string          `json:"order_note,omitempty"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderMeta       OrderMeta       `json:"order_meta"`
}

// CreateOrderResponse ответ провайдера на регистрацию заказа.
type CreateOrderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	OrderStatus      string `json:"order_status"`
}

// OrderStatusResponse ответ провайдера на запрос статуса заказа.
type OrderStatusResponse struct {
	OrderID       string `json:"order_id"`
	OrderStatus   string `json:"order_status"`   // ACTIVE | PAID | EXPIRED
	PaymentStatus string `json:"payment_status"` // SUCCESS | PAID | FAILED
	CFPaymentID   string `json:"cf_payment_id"`
}

// Paid сообщает, считается ли заказ оплаченным. Провайдер использует разные
// поля в зависимости от стадии обработки, достаточно любого из признаков.
func (r *OrderStatusResponse) Paid() bool {
	return r.OrderStatus == "PAID" ||
		r.PaymentStatus == "SUCCESS" || r.PaymentStatus == "PAID"
}
