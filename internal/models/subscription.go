package models

import "time"

// Статусы подписки пользователя.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
)

// UserSubscription представляет оплаченную премиум-подписку.
// При покупке поверх действующей подписки окно продлевается от её конца,
// а не заменяется.
type UserSubscription struct {
	ID          int
	UserID      string     // uid пользователя
	PlanType    string     // Идентификатор плана
	Status      string     // active | cancelled | expired
	StartDate   time.Time  // Начало оплаченного окна
	EndDate     time.Time  // Конец оплаченного окна
	OrderID     string     // Заказ, породивший подписку
	CreatedAt   time.Time
	CancelledAt *time.Time // Момент отмены, nil если не отменялась
}
