package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lovebug/backend/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) MarkStaleOrdersTimeout(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) GetPlatformAnalytics(ctx context.Context) (*models.PlatformAnalytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformAnalytics), args.Error(1)
}

func (m *MockRepository) CountActiveUsersSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UpsertRealTimeMetric(ctx context.Context, metricType string, value float64) error {
	args := m.Called(ctx, metricType, value)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishMessage(exchange, routingKey string, message any) error {
	args := m.Called(exchange, routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSchedulerService_expireSubscriptions(t *testing.T) {
	user := &models.User{
		UID:      "uid-1",
		Email:    "test@example.com",
		Username: "testuser",
	}

	tests := []struct {
		name       string
		setupMocks func(*MockRepository, *MockPublisher)
	}{
		{
			name: "expired user gets expiry mail",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, mock.Anything).Return([]string{"uid-1"}, nil).Once()
				r.On("MarkStaleOrdersTimeout", mock.Anything).Return(int64(0), nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()
				p.On("PublishMessage", "notifications", "expiry", mock.MatchedBy(func(msg *models.MailMessage) bool {
					return msg.Email == "test@example.com"
				})).Return(nil).Once()
			},
		},
		{
			name: "no expired subscriptions",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, mock.Anything).Return([]string{}, nil).Once()
				r.On("MarkStaleOrdersTimeout", mock.Anything).Return(int64(2), nil).Once()
			},
		},
		{
			name: "repository error stops the run",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, mock.Anything).Return(nil, errors.New("db error")).Once()
			},
		},
		{
			name: "missing user is skipped",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, mock.Anything).Return([]string{"uid-gone", "uid-1"}, nil).Once()
				r.On("MarkStaleOrdersTimeout", mock.Anything).Return(int64(0), nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-gone").Return(nil, nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()
				p.On("PublishMessage", "notifications", "expiry", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "publish error is logged only",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, mock.Anything).Return([]string{"uid-1"}, nil).Once()
				r.On("MarkStaleOrdersTimeout", mock.Anything).Return(int64(0), nil).Once()
				r.On("GetUserByUID", mock.Anything, "uid-1").Return(user, nil).Once()
				p.On("PublishMessage", "notifications", "expiry", mock.Anything).
					Return(errors.New("broker down")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			publisher := new(MockPublisher)
			service := NewSchedulerService(repo, newNoopLogger())

			tt.setupMocks(repo, publisher)

			service.expireSubscriptions(context.Background(), publisher)

			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_refreshMetrics(t *testing.T) {
	platform := &models.PlatformAnalytics{
		TotalUsers:     100,
		ActiveUsers:    80,
		PremiumUsers:   15,
		NewSignups:     5,
		ReportsPending: 3,
	}

	tests := []struct {
		name       string
		setupMocks func(*MockRepository)
	}{
		{
			name: "all metrics refreshed",
			setupMocks: func(r *MockRepository) {
				r.On("CountActiveUsersSince", mock.Anything, mock.Anything).Return(42, nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "users_online", float64(42)).Return(nil).Once()
				r.On("GetPlatformAnalytics", mock.Anything).Return(platform, nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "total_users", float64(100)).Return(nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "active_users", float64(80)).Return(nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "premium_users", float64(15)).Return(nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "new_signups", float64(5)).Return(nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "reports_pending", float64(3)).Return(nil).Once()
			},
		},
		{
			name: "count error stops the run",
			setupMocks: func(r *MockRepository) {
				r.On("CountActiveUsersSince", mock.Anything, mock.Anything).Return(0, errors.New("db error")).Once()
			},
		},
		{
			name: "analytics error stops platform counters",
			setupMocks: func(r *MockRepository) {
				r.On("CountActiveUsersSince", mock.Anything, mock.Anything).Return(7, nil).Once()
				r.On("UpsertRealTimeMetric", mock.Anything, "users_online", float64(7)).Return(nil).Once()
				r.On("GetPlatformAnalytics", mock.Anything).Return(nil, errors.New("db error")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			service := NewSchedulerService(repo, newNoopLogger())

			tt.setupMocks(repo)

			service.refreshMetrics(context.Background())

			repo.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_NewSchedulerService(t *testing.T) {
	repo := new(MockRepository)
	logger := newNoopLogger()

	service := NewSchedulerService(repo, logger)

	assert.NotNil(t, service)
	assert.Equal(t, repo, service.repo)
	assert.Equal(t, logger, service.log)
}
