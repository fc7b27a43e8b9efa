// Package services реализует рассылки администратора: создание черновика,
// выбор аудитории и публикацию писем в очередь почтового воркера.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
)

// Ошибки рассылок.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCampaignSent     = errors.New("campaign already sent")
	ErrTemplateNotFound = errors.New("template not found")
)

// NotificationRepository определяет методы хранилища для рассылок.
type NotificationRepository interface {
	// CreateCampaign сохраняет черновик рассылки и возвращает её ID.
	CreateCampaign(ctx context.Context, campaign *models.Campaign) (int, error)
	// GetCampaign возвращает рассылку, nil если не найдена.
	GetCampaign(ctx context.Context, campaignID int) (*models.Campaign, error)
	// ListCampaigns возвращает рассылки, новые первыми.
	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)
	// MarkCampaignSent переводит рассылку в статус sent.
	MarkCampaignSent(ctx context.Context, campaignID, sentCount int) (bool, error)
	// ListUserEmails возвращает адреса аудитории рассылки.
	ListUserEmails(ctx context.Context, audience string) ([]string, error)
	// ListNotificationTemplates возвращает шаблоны писем.
	ListNotificationTemplates(ctx context.Context) ([]*models.NotificationTemplate, error)
	// CreateNotificationTemplate сохраняет шаблон письма и возвращает его ID.
	CreateNotificationTemplate(ctx context.Context, template *models.NotificationTemplate) (int, error)
	// DeleteNotificationTemplate удаляет шаблон, false если шаблона нет.
	DeleteNotificationTemplate(ctx context.Context, templateID int) (bool, error)
}

// Publisher публикует сообщения в очередь уведомлений.
type Publisher interface {
	PublishMessage(exchange, routingKey string, message any) error
}

// NotificationService реализует бизнес-логику рассылок.
type NotificationService struct {
	repo      NotificationRepository
	publisher Publisher
	log       *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo NotificationRepository, publisher Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// CreateCampaign сохраняет черновик рассылки.
func (s *NotificationService) CreateCampaign(ctx context.Context, req models.DummyCampaign) (int, error) {
	return s.repo.CreateCampaign(ctx, &models.Campaign{
		Title:    req.Title,
		Body:     req.Body,
		Audience: req.Audience,
	})
}

// ListCampaigns возвращает все рассылки.
func (s *NotificationService) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	return s.repo.ListCampaigns(ctx)
}

// ListTemplates возвращает шаблоны писем.
func (s *NotificationService) ListTemplates(ctx context.Context) ([]*models.NotificationTemplate, error) {
	return s.repo.ListNotificationTemplates(ctx)
}

// CreateTemplate сохраняет новый шаблон письма.
func (s *NotificationService) CreateTemplate(ctx context.Context, req models.DummyTemplate) (int, error) {
	return s.repo.CreateNotificationTemplate(ctx, &models.NotificationTemplate{
		Title: req.Title,
		Body:  req.Body,
	})
}

// DeleteTemplate удаляет шаблон письма.
func (s *NotificationService) DeleteTemplate(ctx context.Context, templateID int) error {
	deleted, err := s.repo.DeleteNotificationTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTemplateNotFound
	}
	s.log.Info("template deleted", slog.Int("template_id", templateID))
	return nil
}

// SendCampaign отправляет черновик рассылки: письма публикуются в очередь
// по одному на адресата, затем рассылка помечается отправленной. Статус
// переводится первым делом, чтобы параллельный запрос не разослал дубли.
func (s *NotificationService) SendCampaign(ctx context.Context, campaignID int) (int, error) {
	campaign, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, ErrCampaignNotFound
	}
	if campaign.Status != models.CampaignStatusDraft {
		return 0, ErrCampaignSent
	}

	emails, err := s.repo.ListUserEmails(ctx, campaign.Audience)
	if err != nil {
		return 0, err
	}

	marked, err := s.repo.MarkCampaignSent(ctx, campaignID, len(emails))
	if err != nil {
		return 0, err
	}
	if !marked {
		return 0, ErrCampaignSent
	}

	sent := 0
	for _, email := range emails {
		msg := &models.MailMessage{
			Email:   email,
			Subject: campaign.Title,
			Body:    campaign.Body,
		}
		if err := s.publisher.PublishMessage("notifications", "campaign", msg); err != nil {
			s.log.Error("failed to publish campaign mail",
				slog.Int("campaign_id", campaignID), sl.Err(err))
			continue
		}
		sent++
	}

	s.log.Info("campaign sent",
		slog.Int("campaign_id", campaignID),
		slog.String("audience", campaign.Audience),
		slog.Int("recipients", sent))
	return sent, nil
}
