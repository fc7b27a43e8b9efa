package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lovebug/backend/internal/models"
)

// GetActiveSubscription возвращает действующую подписку пользователя
// с самым поздним окончанием, nil если активной подписки нет.
func (s *Storage) GetActiveSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, plan_type, status, start_date, end_date, order_id, created_at, cancelled_at
			  FROM user_subscriptions
			  WHERE user_id = $1 AND status = 'active' AND end_date > NOW()
			  ORDER BY end_date DESC LIMIT 1`
	var sub models.UserSubscription
	err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&sub.ID, &sub.UserID, &sub.PlanType, &sub.Status,
		&sub.StartDate, &sub.EndDate, &sub.OrderID,
		&sub.CreatedAt, &sub.CancelledAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// ActivateSubscription выполняет активацию оплаченного заказа одной
// транзакцией: заказ переводится в success, создаётся строка подписки
// и в анкете поднимается премиум-флаг. Либо выполняется всё, либо ничего.
// Возвращает false без ошибки, если заказ уже был активирован ранее
// (повторный webhook или параллельная проверка статуса).
func (s *Storage) ActivateSubscription(ctx context.Context, sub *models.UserSubscription, paymentID string) (bool, error) {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE payment_orders
		 SET status = 'success', payment_id = $2, updated_at = NOW()
		 WHERE order_id = $1 AND status != 'success'`,
		sub.OrderID, paymentID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO user_subscriptions (user_id, plan_type, status, start_date, end_date, order_id)
		 VALUES ($1, $2, 'active', $3, $4, $5) RETURNING id`,
		sub.UserID, sub.PlanType, sub.StartDate, sub.EndDate, sub.OrderID).Scan(&sub.ID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles
		 SET is_premium = TRUE, premium_until = $2, updated_at = NOW()
		 WHERE id = $1`,
		sub.UserID, sub.EndDate)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// CancelSubscription отменяет действующую подписку пользователя.
// Оплаченное окно сохраняется до исходной даты окончания.
func (s *Storage) CancelSubscription(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE user_subscriptions
		 SET status = 'cancelled', cancelled_at = NOW()
		 WHERE user_id = $1 AND status = 'active'`,
		userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ExpireSubscriptions одной транзакцией переводит истёкшие подписки в
// статус expired, снимает премиум-флаг у пользователей без другого
// действующего окна и пишет событие premium_expired в журнал событий.
// Возвращает uid затронутых пользователей.
func (s *Storage) ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	const op = "storage.ExpireSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx,
		`UPDATE user_subscriptions
		 SET status = 'expired'
		 WHERE status = 'active' AND end_date <= $1
		 RETURNING user_id`, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var userUIDs []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		userUIDs = append(userUIDs, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_ = rows.Close()

	for _, uid := range userUIDs {
		_, err = tx.ExecContext(ctx,
			`UPDATE profiles SET is_premium = FALSE, premium_until = NULL, updated_at = NOW()
			 WHERE id = $1 AND NOT EXISTS (
				SELECT 1 FROM user_subscriptions
				WHERE user_id = $1 AND status = 'active' AND end_date > $2
			 )`, uid, now)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_events (user_id, event_type, event_data)
			 VALUES ($1, 'premium_expired', '{}')`, uid)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return userUIDs, nil
}
