package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lovebug/backend/internal/models"
)

// CreateReport сохраняет новую жалобу в очереди модерации.
func (s *Storage) CreateReport(ctx context.Context, report *models.Report) (int, error) {
	const op = "storage.CreateReport"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reports (reporter_id, reported_user_id, content_type, reason, description, auto_flagged, priority)
			  VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, $6, $7) RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		report.ReporterID, report.ReportedUserID, report.ContentType,
		report.Reason, report.Description, report.AutoFlagged, report.Priority).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetReport возвращает жалобу по идентификатору.
func (s *Storage) GetReport(ctx context.Context, reportID int) (*models.Report, error) {
	const op = "storage.GetReport"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, COALESCE(reporter_id::text, ''), reported_user_id, content_type, reason,
					 description, status, auto_flagged, priority, created_at, reviewed_at, resolution_notes
			  FROM reports WHERE id = $1`
	var r models.Report
	err := s.DB.QueryRowContext(ctx, query, reportID).Scan(
		&r.ID, &r.ReporterID, &r.ReportedUserID, &r.ContentType, &r.Reason,
		&r.Description, &r.Status, &r.AutoFlagged, &r.Priority,
		&r.CreatedAt, &r.ReviewedAt, &r.ResolutionNotes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &r, nil
}

// ListReports возвращает страницу жалоб, опционально фильтруя по статусу.
// Жалобы с высоким приоритетом идут первыми.
func (s *Storage) ListReports(ctx context.Context, status string, limit, offset int) ([]*models.Report, error) {
	const op = "storage.ListReports"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, COALESCE(reporter_id::text, ''), reported_user_id, content_type, reason,
					 description, status, auto_flagged, priority, created_at, reviewed_at, resolution_notes
			  FROM reports
			  WHERE ($1 = '' OR status = $1)
			  ORDER BY CASE priority
				  WHEN 'critical' THEN 0
				  WHEN 'high' THEN 1
				  WHEN 'medium' THEN 2
				  ELSE 3
			  END, created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.ReporterID, &r.ReportedUserID, &r.ContentType, &r.Reason,
			&r.Description, &r.Status, &r.AutoFlagged, &r.Priority,
			&r.CreatedAt, &r.ReviewedAt, &r.ResolutionNotes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	return result, rows.Err()
}

// ResolveReport закрывает жалобу и пишет запись аудита одной транзакцией.
// newStatus определяется действием администратора: approve и remove дают
// resolved, dismiss даёт dismissed.
func (s *Storage) ResolveReport(ctx context.Context, action *models.ModerationAction, newStatus, notes string) error {
	const op = "storage.ResolveReport"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := resolveReportTx(ctx, tx, action, newStatus, notes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func resolveReportTx(ctx context.Context, tx *sql.Tx, action *models.ModerationAction, newStatus, notes string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reports
		 SET status = $2, reviewed_at = NOW(), resolution_notes = $3
		 WHERE id = $1 AND status = 'pending'`,
		action.ReportID, newStatus, notes)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO moderation_actions (report_id, admin_id, action_type, target_user_id, reason)
		 VALUES ($1, $2, $3, $4, $5)`,
		action.ReportID, action.AdminID, action.ActionType, action.TargetUserID, action.Reason)
	return err
}

// BanUserByReport выполняет бан по жалобе одной транзакцией: жалоба
// закрывается со статусом banned, пишется запись аудита, создаётся
// запись бана и анкета нарушителя скрывается из поиска.
func (s *Storage) BanUserByReport(ctx context.Context, action *models.ModerationAction, ban *models.BannedUser, notes string) error {
	const op = "storage.BanUserByReport"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := resolveReportTx(ctx, tx, action, models.ReportStatusBanned, notes); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO banned_users (user_id, banned_by, ban_type, reason, description)
		 VALUES ($1, $2, $3, $4, $5)`,
		ban.UserID, ban.BannedBy, ban.BanType, ban.Reason, ban.Description)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles SET is_active = FALSE, updated_at = NOW() WHERE id = $1`,
		ban.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UnbanUser снимает активный бан пользователя и возвращает анкету в поиск.
func (s *Storage) UnbanUser(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.UnbanUser"
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
		`UPDATE banned_users SET is_active = FALSE, lifted_at = NOW()
		 WHERE user_id = $1 AND is_active`, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE profiles SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// IsUserBanned проверяет наличие активного бана.
func (s *Storage) IsUserBanned(ctx context.Context, userUID string) (bool, error) {
	const op = "storage.IsUserBanned"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var banned bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM banned_users WHERE user_id = $1 AND is_active)`,
		userUID).Scan(&banned)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return banned, nil
}

// GetModerationStats возвращает сводку по очереди модерации.
func (s *Storage) GetModerationStats(ctx context.Context) (*models.ModerationStats, error) {
	const op = "storage.GetModerationStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
		(SELECT COUNT(*) FROM reports WHERE status = 'pending'),
		(SELECT COUNT(*) FROM reports WHERE status = 'pending' AND auto_flagged),
		(SELECT COUNT(*) FROM reports WHERE reviewed_at >= date_trunc('day', NOW())),
		(SELECT COUNT(*) FROM banned_users WHERE is_active)`
	var stats models.ModerationStats
	err := s.DB.QueryRowContext(ctx, query).Scan(
		&stats.PendingReports, &stats.AutoFlagged, &stats.ResolvedToday, &stats.BannedUsers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}
