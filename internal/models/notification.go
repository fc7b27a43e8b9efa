package models

import "time"

// Статусы рассылки.
const (
	CampaignStatusDraft = "draft"
	CampaignStatusSent  = "sent"
)

// NotificationTemplate шаблон письма для рассылок администратора.
type NotificationTemplate struct {
	ID        int
	Title     string
	Body      string
	CreatedAt time.Time
}

// Campaign рассылка уведомлений по аудитории.
type Campaign struct {
	ID        int
	Title     string
	Body      string
	Audience  string // all | premium | inactive
	Status    string // draft | sent
	SentCount int
	CreatedAt time.Time
	SentAt    *time.Time
}

// DummyTemplate используется для приёма шаблона письма из JSON-запроса.
type DummyTemplate struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// DummyCampaign используется для приёма новой рассылки из JSON-запроса.
type DummyCampaign struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"required,oneof=all premium inactive"`
}

// MailMessage сообщение для почтового воркера, публикуется в RabbitMQ.
type MailMessage struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`   // HTML тело письма
	Base64  bool   `json:"base64"` // Тело закодировано в base64 (счета-инвойсы)
}
