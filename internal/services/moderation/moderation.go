// Package services реализует очередь модерации: жалобы пользователей,
// решения администраторов, баны и сводную статистику.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/metrics"
	"github.com/lovebug/backend/internal/models"
)

// Ошибки очереди модерации.
var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportResolved = errors.New("report already resolved")
	ErrNotBanned      = errors.New("user has no active ban")
	ErrSelfReport     = errors.New("cannot report yourself")
)

// ModerationRepository определяет методы хранилища для модерации.
type ModerationRepository interface {
	// CreateReport сохраняет жалобу и возвращает её ID.
	CreateReport(ctx context.Context, report *models.Report) (int, error)
	// GetReport возвращает жалобу, nil если не найдена.
	GetReport(ctx context.Context, reportID int) (*models.Report, error)
	// ListReports возвращает страницу жалоб с фильтром по статусу.
	ListReports(ctx context.Context, status string, limit, offset int) ([]*models.Report, error)
	// ResolveReport закрывает жалобу с записью аудита одной транзакцией.
	ResolveReport(ctx context.Context, action *models.ModerationAction, newStatus, notes string) error
	// BanUserByReport банит нарушителя по жалобе одной транзакцией.
	BanUserByReport(ctx context.Context, action *models.ModerationAction, ban *models.BannedUser, notes string) error
	// UnbanUser снимает активный бан.
	UnbanUser(ctx context.Context, userUID string) (bool, error)
	// GetModerationStats возвращает сводку по очереди.
	GetModerationStats(ctx context.Context) (*models.ModerationStats, error)
}

// ModerationService реализует бизнес-логику модерации.
type ModerationService struct {
	repo ModerationRepository
	log  *slog.Logger
}

// NewModerationService создает новый экземпляр ModerationService.
func NewModerationService(repo ModerationRepository, log *slog.Logger) *ModerationService {
	return &ModerationService{
		repo: repo,
		log:  log,
	}
}

// SubmitReport принимает жалобу пользователя. Приоритет выставляется по
// причине: жалобы на несовершеннолетних и угрозы поднимаются наверх очереди.
func (s *ModerationService) SubmitReport(ctx context.Context, reporterUID string, req models.DummyReport) (int, error) {
	if reporterUID == req.ReportedUserID {
		return 0, ErrSelfReport
	}

	report := &models.Report{
		ReporterID:     reporterUID,
		ReportedUserID: req.ReportedUserID,
		ContentType:    req.ContentType,
		Reason:         req.Reason,
		Description:    req.Description,
		Priority:       priorityForReason(req.Reason),
	}
	id, err := s.repo.CreateReport(ctx, report)
	if err != nil {
		return 0, err
	}

	s.log.Info("report submitted",
		slog.Int("report_id", id),
		slog.String("content_type", req.ContentType),
		slog.String("priority", report.Priority))
	return id, nil
}

// AutoFlag создаёт автоматическую жалобу без заявителя.
func (s *ModerationService) AutoFlag(ctx context.Context, targetUID, contentType, reason string) (int, error) {
	report := &models.Report{
		ReportedUserID: targetUID,
		ContentType:    contentType,
		Reason:         reason,
		AutoFlagged:    true,
		Priority:       priorityForReason(reason),
	}
	return s.repo.CreateReport(ctx, report)
}

func priorityForReason(reason string) string {
	switch reason {
	case "underage", "threats", "violence":
		return "critical"
	case "harassment", "nudity", "inappropriate_content":
		return "high"
	case "spam", "fake_profile":
		return "medium"
	default:
		return "low"
	}
}

// ListReports возвращает страницу жалоб, приоритетные первыми.
func (s *ModerationService) ListReports(ctx context.Context, status string, limit, offset int) ([]*models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListReports(ctx, status, limit, offset)
}

// Resolve применяет решение администратора к жалобе. Действие ban
// дополнительно создаёт запись бана и скрывает анкету нарушителя,
// всё в одной транзакции хранилища.
func (s *ModerationService) Resolve(ctx context.Context, adminUID string, reportID int, req models.DummyModerationAction) error {
	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if report == nil {
		return ErrReportNotFound
	}
	if report.Status != models.ReportStatusPending {
		return ErrReportResolved
	}

	action := &models.ModerationAction{
		ReportID:     reportID,
		AdminID:      adminUID,
		ActionType:   req.Action,
		TargetUserID: report.ReportedUserID,
		Reason:       report.Reason,
	}

	switch req.Action {
	case models.ModerationActionBan:
		ban := &models.BannedUser{
			UserID:      report.ReportedUserID,
			BannedBy:    adminUID,
			BanType:     models.BanTypePermanent,
			Reason:      report.Reason,
			Description: req.Notes,
		}
		err = s.repo.BanUserByReport(ctx, action, ban, req.Notes)
	case models.ModerationActionApprove, models.ModerationActionRemove:
		err = s.repo.ResolveReport(ctx, action, models.ReportStatusResolved, req.Notes)
	case models.ModerationActionDismiss:
		err = s.repo.ResolveReport(ctx, action, models.ReportStatusDismissed, req.Notes)
	default:
		return fmt.Errorf("unknown moderation action: %s", req.Action)
	}
	if err != nil {
		return err
	}

	metrics.ModerationActions.WithLabelValues(req.Action).Inc()
	s.log.Info("report resolved",
		slog.Int("report_id", reportID),
		slog.String("action", req.Action),
		slog.String("admin_uid", adminUID))
	return nil
}

// Unban снимает активный бан пользователя.
func (s *ModerationService) Unban(ctx context.Context, adminUID, targetUID string) error {
	lifted, err := s.repo.UnbanUser(ctx, targetUID)
	if err != nil {
		return err
	}
	if !lifted {
		return ErrNotBanned
	}
	metrics.ModerationActions.WithLabelValues("unban").Inc()
	s.log.Info("user unbanned",
		slog.String("target_uid", targetUID), slog.String("admin_uid", adminUID))
	return nil
}

// Stats возвращает сводку по очереди модерации.
func (s *ModerationService) Stats(ctx context.Context) (*models.ModerationStats, error) {
	stats, err := s.repo.GetModerationStats(ctx)
	if err != nil {
		s.log.Error("failed to load moderation stats", sl.Err(err))
		return nil, err
	}
	return stats, nil
}
