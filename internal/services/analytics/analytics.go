// Package services отдаёт агрегаты панели администратора: сводку по
// платформе и выручке, живые метрики и приём событий продуктовой аналитики.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
)

// AnalyticsRepository определяет методы хранилища для аналитики.
type AnalyticsRepository interface {
	// SaveUserEvent пишет событие продуктовой аналитики.
	SaveUserEvent(ctx context.Context, event *models.UserEvent) error
	// GetPlatformAnalytics считает агрегаты по платформе.
	GetPlatformAnalytics(ctx context.Context) (*models.PlatformAnalytics, error)
	// GetRevenueAnalytics считает агрегаты по выручке за сутки.
	GetRevenueAnalytics(ctx context.Context) (*models.RevenueAnalytics, error)
	// ListRealTimeMetrics возвращает живые метрики.
	ListRealTimeMetrics(ctx context.Context) ([]*models.RealTimeMetric, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Overview сводка для главного экрана панели администратора.
type Overview struct {
	Platform *models.PlatformAnalytics `json:"platform"`
	Revenue  *models.RevenueAnalytics  `json:"revenue"`
}

// AnalyticsService реализует бизнес-логику аналитики.
type AnalyticsService struct {
	repo  AnalyticsRepository
	cache Cache
	log   *slog.Logger
}

// NewAnalyticsService создает новый экземпляр AnalyticsService.
func NewAnalyticsService(repo AnalyticsRepository, cache Cache, log *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

const overviewCacheKey = "analytics:overview"

// GetOverview возвращает сводку по платформе и выручке.
// Агрегаты тяжёлые, поэтому результат кешируется на минуту.
func (s *AnalyticsService) GetOverview(ctx context.Context) (*Overview, error) {
	var cached Overview
	found, err := s.cache.Get(overviewCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read overview cache", sl.Err(err))
	} else if found {
		return &cached, nil
	}

	platform, err := s.repo.GetPlatformAnalytics(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.GetRevenueAnalytics(ctx)
	if err != nil {
		return nil, err
	}

	overview := &Overview{Platform: platform, Revenue: revenue}
	if err := s.cache.Set(overviewCacheKey, overview, time.Minute); err != nil {
		s.log.Warn("failed to cache overview", sl.Err(err))
	}
	return overview, nil
}

// RealTimeMetrics возвращает живые метрики, пересчитываемые планировщиком.
func (s *AnalyticsService) RealTimeMetrics(ctx context.Context) ([]*models.RealTimeMetric, error) {
	return s.repo.ListRealTimeMetrics(ctx)
}

// Track пишет событие продуктовой аналитики.
func (s *AnalyticsService) Track(ctx context.Context, userUID, eventType string, data map[string]any) error {
	return s.repo.SaveUserEvent(ctx, &models.UserEvent{
		UserID:    userUID,
		EventType: eventType,
		EventData: data,
	})
}
