package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lovebug/backend/internal/models"
)

// CreateCampaign сохраняет черновик рассылки.
func (s *Storage) CreateCampaign(ctx context.Context, campaign *models.Campaign) (int, error) {
	const op = "storage.CreateCampaign"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO admin_notifications (title, body, audience, status)
			  VALUES ($1, $2, $3, 'draft') RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		campaign.Title, campaign.Body, campaign.Audience).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetCampaign возвращает рассылку по идентификатору.
func (s *Storage) GetCampaign(ctx context.Context, campaignID int) (*models.Campaign, error) {
	const op = "storage.GetCampaign"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, body, audience, status, sent_count, created_at, sent_at
			  FROM admin_notifications WHERE id = $1`
	var c models.Campaign
	err := s.DB.QueryRowContext(ctx, query, campaignID).Scan(
		&c.ID, &c.Title, &c.Body, &c.Audience, &c.Status,
		&c.SentCount, &c.CreatedAt, &c.SentAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// ListCampaigns возвращает рассылки, новые первыми.
func (s *Storage) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	const op = "storage.ListCampaigns"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, body, audience, status, sent_count, created_at, sent_at
		 FROM admin_notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.Title, &c.Body, &c.Audience, &c.Status,
			&c.SentCount, &c.CreatedAt, &c.SentAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

// MarkCampaignSent переводит рассылку в статус sent и фиксирует число
// адресатов. Возвращает false, если рассылка уже была отправлена.
func (s *Storage) MarkCampaignSent(ctx context.Context, campaignID, sentCount int) (bool, error) {
	const op = "storage.MarkCampaignSent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE admin_notifications
		 SET status = 'sent', sent_count = $2, sent_at = NOW()
		 WHERE id = $1 AND status = 'draft'`,
		campaignID, sentCount)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// CreateNotificationTemplate сохраняет шаблон письма и возвращает его ID.
func (s *Storage) CreateNotificationTemplate(ctx context.Context, template *models.NotificationTemplate) (int, error) {
	const op = "storage.CreateNotificationTemplate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO notification_templates (title, body) VALUES ($1, $2) RETURNING id`,
		template.Title, template.Body).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// DeleteNotificationTemplate удаляет шаблон письма.
// Возвращает false, если шаблона с таким ID нет.
func (s *Storage) DeleteNotificationTemplate(ctx context.Context, templateID int) (bool, error) {
	const op = "storage.DeleteNotificationTemplate"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM notification_templates WHERE id = $1`, templateID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// ListNotificationTemplates возвращает шаблоны писем.
func (s *Storage) ListNotificationTemplates(ctx context.Context) ([]*models.NotificationTemplate, error) {
	const op = "storage.ListNotificationTemplates"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, body, created_at FROM notification_templates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.NotificationTemplate
	for rows.Next() {
		var t models.NotificationTemplate
		if err := rows.Scan(&t.ID, &t.Title, &t.Body, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}
