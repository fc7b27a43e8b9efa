package models

import "time"

// UserEvent событие продуктовой аналитики.
type UserEvent struct {
	ID        int
	UserID    string
	EventType string
	EventData map[string]any
	CreatedAt time.Time
}

// DummyEvent используется для приёма события аналитики из JSON-запроса.
type DummyEvent struct {
	EventType string         `json:"event_type" validate:"required,oneof=app_open profile_view like message_sent search"`
	EventData map[string]any `json:"event_data,omitempty"`
}

// RealTimeMetric строка живой метрики, пересчитывается планировщиком.
type RealTimeMetric struct {
	MetricType  string    `json:"metric_type"`
	MetricValue float64   `json:"metric_value"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// PlatformAnalytics агрегат по платформе за день.
type PlatformAnalytics struct {
	Day            time.Time `json:"day"`
	TotalUsers     int       `json:"total_users"`
	ActiveUsers    int       `json:"active_users"`
	PremiumUsers   int       `json:"premium_users"`
	NewSignups     int       `json:"new_signups"`
	ReportsPending int       `json:"reports_pending"`
}

// RevenueAnalytics агрегат по выручке за день.
type RevenueAnalytics struct {
	Day           time.Time `json:"day"`
	OrdersTotal   int       `json:"orders_total"`
	OrdersSuccess int       `json:"orders_success"`
	RevenueMinor  int64     `json:"revenue_minor"` // Сумма успешных платежей в минорных единицах
}
