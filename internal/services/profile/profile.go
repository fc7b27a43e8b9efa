// Package services содержит бизнес-логику анкет: мастер заполнения,
// выдачу поиска с кешированием и управление видимостью.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
)

// Ошибки валидации шагов мастера.
var (
	ErrUnknownStep     = errors.New("unknown wizard step")
	ErrUnderage        = errors.New("age must be at least 18")
	ErrNoPhotos        = errors.New("at least one photo is required")
	ErrFewInterests    = errors.New("at least two interests are required")
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository определяет методы для работы с анкетами в хранилище.
type ProfileRepository interface {
	// GetProfile возвращает анкету пользователя, nil если не найдена.
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
	// UpdateProfile применяет частичное обновление анкеты.
	UpdateProfile(ctx context.Context, userUID string, patch *models.ProfilePatch) (*models.Profile, error)
	// SetProfileActive переключает видимость анкеты в поиске.
	SetProfileActive(ctx context.Context, userUID string, active bool) error
	// ListActiveProfiles возвращает страницу активных анкет без анкеты зрителя.
	ListActiveProfiles(ctx context.Context, viewerUID string, limit, offset int) ([]*models.Profile, error)
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

// Flagger отправляет подозрительный контент в очередь модерации.
type Flagger interface {
	// AutoFlag создаёт автоматическую жалобу без заявителя.
	AutoFlag(ctx context.Context, targetUID, contentType, reason string) (int, error)
}

// ProfileService реализует бизнес-логику работы с анкетами.
type ProfileService struct {
	repo    ProfileRepository
	cache   Cache
	flagger Flagger
	log     *slog.Logger
}

// NewProfileService создает новый экземпляр ProfileService.
func NewProfileService(repo ProfileRepository, cache Cache, flagger Flagger, log *slog.Logger) *ProfileService {
	return &ProfileService{
		repo:    repo,
		cache:   cache,
		flagger: flagger,
		log:     log,
	}
}

// Get возвращает анкету пользователя.
func (s *ProfileService) Get(ctx context.Context, userUID string) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// SaveStep применяет данные одного шага мастера заполнения анкеты.
// Каждый шаг сохраняется отдельно, так что прерванный мастер можно
// продолжить с места остановки. Возвращает обновлённую анкету.
func (s *ProfileService) SaveStep(ctx context.Context, userUID, step string, req models.DummyStep) (*models.Profile, error) {
	patch, err := buildStepPatch(step, req)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.UpdateProfile(ctx, userUID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info("saved wizard step",
		slog.String("step", step), slog.Bool("complete", profile.Complete()))

	if step == models.StepBio {
		s.screenBio(ctx, userUID, req.Description)
	}

	if err := s.cache.Invalidate(profileCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate profile cache", sl.Err(err))
	}
	return profile, nil
}

// spamMarkers подстроки, по которым описание анкеты уходит модераторам.
// Ссылки и внешние контакты в описании почти всегда означают спам.
var spamMarkers = []string{"http://", "https://", "t.me/", "wa.me/", "onlyfans"}

// screenBio прогоняет текст описания через простой фильтр и при срабатывании
// создаёт автоматическую жалобу. Ошибка фильтра не блокирует сохранение шага:
// анкета остаётся, а модераторы разберутся позже.
func (s *ProfileService) screenBio(ctx context.Context, userUID, description string) {
	lowered := strings.ToLower(description)
	for _, marker := range spamMarkers {
		if !strings.Contains(lowered, marker) {
			continue
		}
		reportID, err := s.flagger.AutoFlag(ctx, userUID, "bio", "spam")
		if err != nil {
			s.log.Error("failed to auto-flag profile bio", sl.Err(err))
			return
		}
		s.log.Info("profile bio auto-flagged",
			slog.Int("report_id", reportID), slog.String("marker", marker))
		return
	}
}

func buildStepPatch(step string, req models.DummyStep) (*models.ProfilePatch, error) {
	patch := &models.ProfilePatch{}
	switch step {
	case models.StepGender:
		if req.Gender == "" {
			return nil, fmt.Errorf("gender is required")
		}
		patch.Gender = &req.Gender
	case models.StepBasic:
		if req.Age < 18 {
			return nil, ErrUnderage
		}
		if req.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		patch.Name = &req.Name
		patch.Age = &req.Age
	case models.StepPhotos:
		if len(req.ImageURLs) < 1 {
			return nil, ErrNoPhotos
		}
		patch.ImageURLs = req.ImageURLs
	case models.StepBio:
		patch.Description = &req.Description
	case models.StepInterests:
		if len(req.Hobbies) < 2 {
			return nil, ErrFewInterests
		}
		patch.Hobbies = req.Hobbies
	case models.StepLocation:
		if req.Location == "" {
			return nil, fmt.Errorf("location is required")
		}
		patch.Location = &req.Location
	default:
		return nil, ErrUnknownStep
	}
	return patch, nil
}

// Browse возвращает страницу активных анкет для зрителя.
// Первая страница кешируется на короткое время.
func (s *ProfileService) Browse(ctx context.Context, viewerUID string, limit, offset int) ([]*models.Profile, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("browse:%s:%d:%d", viewerUID, limit, offset)
	var cached []*models.Profile
	if offset == 0 {
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read browse cache", sl.Err(err))
		} else if found {
			return cached, nil
		}
	}

	profiles, err := s.repo.ListActiveProfiles(ctx, viewerUID, limit, offset)
	if err != nil {
		return nil, err
	}

	if offset == 0 {
		if err := s.cache.Set(cacheKey, profiles, time.Minute); err != nil {
			s.log.Warn("failed to cache browse page", sl.Err(err))
		}
	}
	return profiles, nil
}

// SetActive переключает видимость анкеты в поиске.
func (s *ProfileService) SetActive(ctx context.Context, userUID string, active bool) error {
	if err := s.repo.SetProfileActive(ctx, userUID, active); err != nil {
		return err
	}
	if err := s.cache.Invalidate(profileCacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate profile cache", sl.Err(err))
	}
	return nil
}

func profileCacheKey(userUID string) string {
	return "profile:" + userUID
}
