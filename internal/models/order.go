package models

import "time"

// Статусы заказа на оплату.
const (
	OrderStatusPending = "pending"
	OrderStatusSuccess = "success"
	OrderStatusFailed  = "failed"
	OrderStatusTimeout = "timeout"
)

// PaymentOrder представляет заказ на оплату премиум-плана.
// Идентификатор генерируется на нашей стороне до обращения к провайдеру,
// строка создаётся в статусе pending и после завершения платежа не изменяется
// (семантика журнала, append-only).
type PaymentOrder struct {
	OrderID   string    // UUID заказа, сгенерированный до открытия оплаты
	UserID    string    // uid пользователя
	PlanType  string    // Идентификатор плана из таблицы планов
	Amount    int64     // Сумма в минорных единицах валюты
	Status    string    // pending | success | failed | timeout
	PaymentID string    // Идентификатор платежа у провайдера, пустой до оплаты
	UserEmail string    // Почта плательщика
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DummyInitiate используется для приёма запроса на начало оплаты из JSON.
type DummyInitiate struct {
	PlanType string `json:"plan_type" validate:"required"`
	Name     string `json:"name" validate:"required"`
}
