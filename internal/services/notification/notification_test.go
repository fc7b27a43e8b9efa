package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lovebug/backend/internal/models"
)

type NotificationRepoMock struct {
	mock.Mock
}

func (m *NotificationRepoMock) CreateCampaign(ctx context.Context, campaign *models.Campaign) (int, error) {
	args := m.Called(ctx, campaign)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepoMock) GetCampaign(ctx context.Context, campaignID int) (*models.Campaign, error) {
	args := m.Called(ctx, campaignID)
	campaign, _ := args.Get(0).(*models.Campaign)
	return campaign, args.Error(1)
}

func (m *NotificationRepoMock) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	args := m.Called(ctx)
	campaigns, _ := args.Get(0).([]*models.Campaign)
	return campaigns, args.Error(1)
}

func (m *NotificationRepoMock) MarkCampaignSent(ctx context.Context, campaignID, sentCount int) (bool, error) {
	args := m.Called(ctx, campaignID, sentCount)
	return args.Bool(0), args.Error(1)
}

func (m *NotificationRepoMock) ListUserEmails(ctx context.Context, audience string) ([]string, error) {
	args := m.Called(ctx, audience)
	emails, _ := args.Get(0).([]string)
	return emails, args.Error(1)
}

func (m *NotificationRepoMock) ListNotificationTemplates(ctx context.Context) ([]*models.NotificationTemplate, error) {
	args := m.Called(ctx)
	templates, _ := args.Get(0).([]*models.NotificationTemplate)
	return templates, args.Error(1)
}

func (m *NotificationRepoMock) CreateNotificationTemplate(ctx context.Context, template *models.NotificationTemplate) (int, error) {
	args := m.Called(ctx, template)
	return args.Int(0), args.Error(1)
}

func (m *NotificationRepoMock) DeleteNotificationTemplate(ctx context.Context, templateID int) (bool, error) {
	args := m.Called(ctx, templateID)
	return args.Bool(0), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishMessage(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

func newTestNotificationService(repo *NotificationRepoMock, publisher *PublisherMock) *NotificationService {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewNotificationService(repo, publisher, logger)
}

func TestSendCampaign_PublishesPerRecipient(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	campaign := &models.Campaign{
		ID:       7,
		Title:    "Weekend boost",
		Body:     "Premium is 20% off this weekend.",
		Audience: "premium",
		Status:   models.CampaignStatusDraft,
	}
	emails := []string{"a@example.com", "b@example.com"}

	repoMock.On("GetCampaign", mock.Anything, 7).Return(campaign, nil).Once()
	repoMock.On("ListUserEmails", mock.Anything, "premium").Return(emails, nil).Once()
	repoMock.On("MarkCampaignSent", mock.Anything, 7, 2).Return(true, nil).Once()
	publisherMock.On("PublishMessage", "notifications", "campaign", mock.MatchedBy(func(msg any) bool {
		mail, ok := msg.(*models.MailMessage)
		return ok && mail.Subject == "Weekend boost"
	})).Return(nil).Twice()

	sent, err := service.SendCampaign(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	repoMock.AssertExpectations(t)
	publisherMock.AssertExpectations(t)
}

func TestSendCampaign_NotFound(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	repoMock.On("GetCampaign", mock.Anything, 404).Return(nil, nil).Once()

	_, err := service.SendCampaign(context.Background(), 404)

	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestSendCampaign_AlreadySent(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	repoMock.On("GetCampaign", mock.Anything, 7).Return(&models.Campaign{
		ID:     7,
		Status: models.CampaignStatusSent,
	}, nil).Once()

	_, err := service.SendCampaign(context.Background(), 7)

	assert.ErrorIs(t, err, ErrCampaignSent)
	publisherMock.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCampaign_MarksSentBeforePublishing(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	campaign := &models.Campaign{
		ID:       7,
		Title:    "Weekend boost",
		Body:     "body",
		Audience: "all",
		Status:   models.CampaignStatusDraft,
	}

	repoMock.On("GetCampaign", mock.Anything, 7).Return(campaign, nil).Once()
	repoMock.On("ListUserEmails", mock.Anything, "all").Return([]string{"a@example.com"}, nil).Once()
	// Параллельный запрос успел пометить рассылку отправленной.
	repoMock.On("MarkCampaignSent", mock.Anything, 7, 1).Return(false, nil).Once()

	_, err := service.SendCampaign(context.Background(), 7)

	assert.ErrorIs(t, err, ErrCampaignSent)
	publisherMock.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTemplate_SavesTitleAndBody(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	repoMock.On("CreateNotificationTemplate", mock.Anything, mock.MatchedBy(func(template *models.NotificationTemplate) bool {
		return template.Title == "Welcome back" && template.Body == "We saved your matches."
	})).Return(11, nil).Once()

	id, err := service.CreateTemplate(context.Background(), models.DummyTemplate{
		Title: "Welcome back",
		Body:  "We saved your matches.",
	})

	require.NoError(t, err)
	assert.Equal(t, 11, id)
	repoMock.AssertExpectations(t)
}

func TestDeleteTemplate_NotFound(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	repoMock.On("DeleteNotificationTemplate", mock.Anything, 404).Return(false, nil).Once()

	err := service.DeleteTemplate(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDeleteTemplate_Deletes(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	repoMock.On("DeleteNotificationTemplate", mock.Anything, 11).Return(true, nil).Once()

	err := service.DeleteTemplate(context.Background(), 11)

	require.NoError(t, err)
	repoMock.AssertExpectations(t)
}

func TestSendCampaign_ContinuesOnPublishError(t *testing.T) {
	repoMock := new(NotificationRepoMock)
	publisherMock := new(PublisherMock)
	service := newTestNotificationService(repoMock, publisherMock)

	campaign := &models.Campaign{
		ID:       7,
		Title:    "Weekend boost",
		Body:     "body",
		Audience: "all",
		Status:   models.CampaignStatusDraft,
	}
	emails := []string{"a@example.com", "b@example.com"}

	repoMock.On("GetCampaign", mock.Anything, 7).Return(campaign, nil).Once()
	repoMock.On("ListUserEmails", mock.Anything, "all").Return(emails, nil).Once()
	repoMock.On("MarkCampaignSent", mock.Anything, 7, 2).Return(true, nil).Once()
	publisherMock.On("PublishMessage", "notifications", "campaign", mock.Anything).
		Return(errors.New("broker down")).Once()
	publisherMock.On("PublishMessage", "notifications", "campaign", mock.Anything).
		Return(nil).Once()

	sent, err := service.SendCampaign(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
