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
	"github.com/stretchr/testify/require"

	"github.com/lovebug/backend/internal/models"
)

type AnalyticsRepoMock struct {
	mock.Mock
}

func (m *AnalyticsRepoMock) SaveUserEvent(ctx context.Context, event *models.UserEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *AnalyticsRepoMock) GetPlatformAnalytics(ctx context.Context) (*models.PlatformAnalytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformAnalytics), args.Error(1)
}

func (m *AnalyticsRepoMock) GetRevenueAnalytics(ctx context.Context) (*models.RevenueAnalytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueAnalytics), args.Error(1)
}

func (m *AnalyticsRepoMock) ListRealTimeMetrics(ctx context.Context) ([]*models.RealTimeMetric, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RealTimeMetric), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newTestAnalyticsService(repo *AnalyticsRepoMock, cache *CacheMock) *AnalyticsService {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewAnalyticsService(repo, cache, logger)
}

func TestGetOverview_CacheMissLoadsAndCaches(t *testing.T) {
	repo := new(AnalyticsRepoMock)
	cache := new(CacheMock)
	service := newTestAnalyticsService(repo, cache)

	platform := &models.PlatformAnalytics{TotalUsers: 10, PremiumUsers: 2}
	revenue := &models.RevenueAnalytics{OrdersTotal: 3, OrdersSuccess: 2, RevenueMinor: 139800}

	cache.On("Get", "analytics:overview", mock.Anything).Return(false, nil).Once()
	repo.On("GetPlatformAnalytics", mock.Anything).Return(platform, nil).Once()
	repo.On("GetRevenueAnalytics", mock.Anything).Return(revenue, nil).Once()
	cache.On("Set", "analytics:overview", mock.Anything, time.Minute).Return(nil).Once()

	overview, err := service.GetOverview(context.Background())

	require.NoError(t, err)
	assert.Equal(t, platform, overview.Platform)
	assert.Equal(t, revenue, overview.Revenue)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGetOverview_CacheHitSkipsRepository(t *testing.T) {
	repo := new(AnalyticsRepoMock)
	cache := new(CacheMock)
	service := newTestAnalyticsService(repo, cache)

	cache.On("Get", "analytics:overview", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(1).(*Overview)
			out.Platform = &models.PlatformAnalytics{TotalUsers: 42}
		}).Return(true, nil).Once()

	overview, err := service.GetOverview(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, overview.Platform.TotalUsers)
	repo.AssertNotCalled(t, "GetPlatformAnalytics", mock.Anything)
	repo.AssertNotCalled(t, "GetRevenueAnalytics", mock.Anything)
}

func TestGetOverview_RepositoryError(t *testing.T) {
	repo := new(AnalyticsRepoMock)
	cache := new(CacheMock)
	service := newTestAnalyticsService(repo, cache)

	cache.On("Get", "analytics:overview", mock.Anything).Return(false, nil).Once()
	repo.On("GetPlatformAnalytics", mock.Anything).Return(nil, errors.New("db error")).Once()

	_, err := service.GetOverview(context.Background())

	assert.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestRealTimeMetrics_PassesThrough(t *testing.T) {
	repo := new(AnalyticsRepoMock)
	cache := new(CacheMock)
	service := newTestAnalyticsService(repo, cache)

	metrics := []*models.RealTimeMetric{{MetricType: "users_online", MetricValue: 17}}
	repo.On("ListRealTimeMetrics", mock.Anything).Return(metrics, nil).Once()

	got, err := service.RealTimeMetrics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, metrics, got)
}

func TestTrack_SavesEvent(t *testing.T) {
	repo := new(AnalyticsRepoMock)
	cache := new(CacheMock)
	service := newTestAnalyticsService(repo, cache)

	repo.On("SaveUserEvent", mock.Anything, mock.MatchedBy(func(event *models.UserEvent) bool {
		return event.UserID == "uid-1" &&
			event.EventType == "profile_view" &&
			event.EventData["target"] == "uid-2"
	})).Return(nil).Once()

	err := service.Track(context.Background(), "uid-1", "profile_view", map[string]any{"target": "uid-2"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
