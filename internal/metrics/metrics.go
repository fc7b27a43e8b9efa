// Package metrics содержит доменные счётчики Prometheus, публикуемые на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsInitiated количество начатых оплат по типам планов.
	PaymentsInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lovebug_payments_initiated_total",
		Help: "Number of initiated checkouts by plan type.",
	}, []string{"plan_type"})

	// PaymentsActivated количество успешно активированных подписок.
	PaymentsActivated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lovebug_payments_activated_total",
		Help: "Number of successfully activated subscriptions by plan type.",
	}, []string{"plan_type"})

	// PaymentsFailed количество оплат, завершившихся ошибкой или таймаутом проверки.
	PaymentsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lovebug_payments_failed_total",
		Help: "Number of failed or timed out payments by reason.",
	}, []string{"reason"})

	// ModerationActions количество действий модерации по типам.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lovebug_moderation_actions_total",
		Help: "Number of moderation actions by action type.",
	}, []string{"action"})
)
