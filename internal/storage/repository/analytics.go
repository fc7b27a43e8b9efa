package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lovebug/backend/internal/models"
)

// SaveUserEvent пишет событие продуктовой аналитики.
func (s *Storage) SaveUserEvent(ctx context.Context, event *models.UserEvent) error {
	const op = "storage.SaveUserEvent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	raw, err := json.Marshal(event.EventData)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO user_events (user_id, event_type, event_data) VALUES ($1, $2, $3)`,
		event.UserID, event.EventType, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPlatformAnalytics считает агрегаты по платформе на текущий момент.
func (s *Storage) GetPlatformAnalytics(ctx context.Context) (*models.PlatformAnalytics, error) {
	const op = "storage.GetPlatformAnalytics"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM profiles WHERE is_active),
		(SELECT COUNT(*) FROM profiles WHERE is_premium),
		(SELECT COUNT(*) FROM users WHERE created_at >= date_trunc('day', NOW())),
		(SELECT COUNT(*) FROM reports WHERE status = 'pending')`
	stats := models.PlatformAnalytics{Day: time.Now().UTC().Truncate(24 * time.Hour)}
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers, &stats.ActiveUsers, &stats.PremiumUsers,
		&stats.NewSignups, &stats.ReportsPending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// GetRevenueAnalytics считает агрегаты по выручке за текущие сутки.
func (s *Storage) GetRevenueAnalytics(ctx context.Context) (*models.RevenueAnalytics, error) {
	const op = "storage.GetRevenueAnalytics"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE status = 'success'),
		COALESCE(SUM(amount) FILTER (WHERE status = 'success'), 0)
		FROM payment_orders
		WHERE created_at >= date_trunc('day', NOW())`
	stats := models.RevenueAnalytics{Day: time.Now().UTC().Truncate(24 * time.Hour)}
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.OrdersTotal, &stats.OrdersSuccess, &stats.RevenueMinor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// UpsertRealTimeMetric сохраняет значение живой метрики, перезаписывая
// предыдущее значение того же типа.
func (s *Storage) UpsertRealTimeMetric(ctx context.Context, metricType string, value float64) error {
	const op = "storage.UpsertRealTimeMetric"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO real_time_metrics (metric_type, metric_value, recorded_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (metric_type)
		 DO UPDATE SET metric_value = EXCLUDED.metric_value, recorded_at = EXCLUDED.recorded_at`,
		metricType, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListRealTimeMetrics возвращает все живые метрики.
func (s *Storage) ListRealTimeMetrics(ctx context.Context) ([]*models.RealTimeMetric, error) {
	const op = "storage.ListRealTimeMetrics"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT metric_type, metric_value, recorded_at FROM real_time_metrics ORDER BY metric_type`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.RealTimeMetric
	for rows.Next() {
		var m models.RealTimeMetric
		if err := rows.Scan(&m.MetricType, &m.MetricValue, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}

// CountActiveUsersSince считает пользователей с событиями за период,
// используется планировщиком для метрики users_online.
func (s *Storage) CountActiveUsersSince(ctx context.Context, since time.Time) (int, error) {
	const op = "storage.CountActiveUsersSince"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM user_events WHERE created_at >= $1`,
		since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
