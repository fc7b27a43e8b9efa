// Package services содержит фоновые задачи платформы: деактивацию
// истёкших подписок, уборку зависших заказов и пересчёт живых метрик.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
)

// SchedulerRepository определяет методы хранилища для фоновых задач.
type SchedulerRepository interface {
	// ExpireSubscriptions деактивирует истёкшие подписки и возвращает uid пользователей.
	ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error)
	// MarkStaleOrdersTimeout закрывает зависшие pending-заказы.
	MarkStaleOrdersTimeout(ctx context.Context) (int64, error)
	// GetUserByUID возвращает пользователя, nil если не найден.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	// GetPlatformAnalytics считает агрегаты по платформе.
	GetPlatformAnalytics(ctx context.Context) (*models.PlatformAnalytics, error)
	// CountActiveUsersSince считает пользователей с событиями за период.
	CountActiveUsersSince(ctx context.Context, since time.Time) (int, error)
	// UpsertRealTimeMetric сохраняет значение живой метрики.
	UpsertRealTimeMetric(ctx context.Context, metricType string, value float64) error
}

// Publisher публикует сообщения в очередь уведомлений.
type Publisher interface {
	PublishMessage(exchange, routingKey string, message any) error
}

// SchedulerService запускает периодические задачи платформы.
type SchedulerService struct {
	repo SchedulerRepository
	log  *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SchedulerRepository, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo: repo,
		log:  log,
	}
}

// RunExpireSubscriptions периодически деактивирует истёкшие подписки
// и уведомляет затронутых пользователей письмом через очередь.
func (s *SchedulerService) RunExpireSubscriptions(ctx context.Context, publisher Publisher, interval time.Duration) {
	s.expireSubscriptions(ctx, publisher)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expireSubscriptions(ctx, publisher)
		}
	}
}

func (s *SchedulerService) expireSubscriptions(ctx context.Context, publisher Publisher) {
	s.log.Info("checking for expired subscriptions")

	userUIDs, err := s.repo.ExpireSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to expire subscriptions", sl.Err(err))
		return
	}
	if n, err := s.repo.MarkStaleOrdersTimeout(ctx); err != nil {
		s.log.Error("failed to close stale orders", sl.Err(err))
	} else if n > 0 {
		s.log.Info("closed stale pending orders", slog.Int64("count", n))
	}
	if len(userUIDs) == 0 {
		s.log.Info("no expired subscriptions found")
		return
	}
	s.log.Info("expired subscriptions", slog.Int("count", len(userUIDs)))

	for _, uid := range userUIDs {
		user, err := s.repo.GetUserByUID(ctx, uid)
		if err != nil || user == nil {
			s.log.Error("failed to load expired user", slog.String("user_uid", uid), sl.Err(err))
			continue
		}
		msg := &models.MailMessage{
			Email:   user.Email,
			Subject: "Your lovebug premium has expired",
			Body: "Hi " + user.Username + ",\n\n" +
				"Your premium subscription has ended. Renew any time from the app to keep premium features.",
		}
		if err := publisher.PublishMessage("notifications", "expiry", msg); err != nil {
			s.log.Error("failed to publish expiry mail", sl.Err(err))
		}
	}
}

// RunRefreshMetrics периодически пересчитывает живые метрики панели
// администратора.
func (s *SchedulerService) RunRefreshMetrics(ctx context.Context, interval time.Duration) {
	s.refreshMetrics(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshMetrics(ctx)
		}
	}
}

func (s *SchedulerService) refreshMetrics(ctx context.Context) {
	online, err := s.repo.CountActiveUsersSince(ctx, time.Now().Add(-15*time.Minute))
	if err != nil {
		s.log.Error("failed to count online users", sl.Err(err))
		return
	}
	if err := s.repo.UpsertRealTimeMetric(ctx, "users_online", float64(online)); err != nil {
		s.log.Error("failed to store users_online metric", sl.Err(err))
	}

	platform, err := s.repo.GetPlatformAnalytics(ctx)
	if err != nil {
		s.log.Error("failed to load platform analytics", sl.Err(err))
		return
	}
	for metricType, value := range map[string]float64{
		"total_users":     float64(platform.TotalUsers),
		"active_users":    float64(platform.ActiveUsers),
		"premium_users":   float64(platform.PremiumUsers),
		"new_signups":     float64(platform.NewSignups),
		"reports_pending": float64(platform.ReportsPending),
	} {
		if err := s.repo.UpsertRealTimeMetric(ctx, metricType, value); err != nil {
			s.log.Error("failed to store metric",
				slog.String("metric_type", metricType), sl.Err(err))
		}
	}
}
