package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lovebug/backend/internal/models"
)

// CreatePaymentOrder сохраняет новый заказ на оплату в статусе pending.
// Строка создаётся до обращения к платёжному провайдеру, чтобы заказ
// существовал в журнале даже при сбое на стороне провайдера.
func (s *Storage) CreatePaymentOrder(ctx context.Context, order *models.PaymentOrder) error {
	const op = "storage.CreatePaymentOrder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payment_orders (order_id, user_id, plan_type, amount, status, user_email)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		order.OrderID, order.UserID, order.PlanType, order.Amount, order.Status, order.UserEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPaymentOrder возвращает заказ по идентификатору.
func (s *Storage) GetPaymentOrder(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	const op = "storage.GetPaymentOrder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT order_id, user_id, plan_type, amount, status, payment_id, user_email, created_at, updated_at
			  FROM payment_orders WHERE order_id = $1`
	var order models.PaymentOrder
	err := s.DB.QueryRowContext(ctx, query, orderID).Scan(
		&order.OrderID, &order.UserID, &order.PlanType, &order.Amount,
		&order.Status, &order.PaymentID, &order.UserEmail,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &order, nil
}

// UpdateOrderStatus переводит заказ в новый статус. Заказ в терминальном
// статусе success не изменяется, чтобы повторный webhook не портил журнал.
func (s *Storage) UpdateOrderStatus(ctx context.Context, orderID, status, paymentID string) error {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_orders
			  SET status = $2, payment_id = $3, updated_at = NOW()
			  WHERE order_id = $1 AND status != 'success'`
	_, err := s.DB.ExecContext(ctx, query, orderID, status, paymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]*models.PaymentOrder, error) {
	const op = "storage.ListOrdersByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT order_id, user_id, plan_type, amount, status, payment_id, user_email, created_at, updated_at
			  FROM payment_orders WHERE user_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentOrder
	for rows.Next() {
		var order models.PaymentOrder
		if err := rows.Scan(&order.OrderID, &order.UserID, &order.PlanType, &order.Amount,
			&order.Status, &order.PaymentID, &order.UserEmail,
			&order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &order)
	}
	return result, rows.Err()
}

// MarkStaleOrdersTimeout переводит зависшие pending-заказы старше порога
// в статус timeout и возвращает число затронутых строк.
func (s *Storage) MarkStaleOrdersTimeout(ctx context.Context) (int64, error) {
	const op = "storage.MarkStaleOrdersTimeout"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_orders
			  SET status = 'timeout', updated_at = NOW()
			  WHERE status = 'pending' AND created_at < NOW() - INTERVAL '1 hour'`
	res, err := s.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
