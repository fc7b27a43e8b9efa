package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lovebug/backend/internal/models"
)

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	var hobbies, imageURLs []byte
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Description,
		&hobbies, &imageURLs, &p.Location, &p.IsActive,
		&p.IsPremium, &p.PremiumUntil, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(hobbies, &p.Hobbies); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(imageURLs, &p.ImageURLs); err != nil {
		return nil, err
	}
	return &p, nil
}

const profileColumns = `id, name, age, gender, description, hobbies, image_urls,
	location, is_active, is_premium, premium_until, created_at, updated_at`

// GetProfile возвращает анкету пользователя.
func (s *Storage) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	profile, err := scanProfile(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// UpdateProfile применяет частичное обновление анкеты: заполненные поля
// патча перезаписывают сохранённые значения, nil-поля не трогаются.
func (s *Storage) UpdateProfile(ctx context.Context, userUID string, patch *models.ProfilePatch) (*models.Profile, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{userUID}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.Gender != nil {
		add("gender", *patch.Gender)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Hobbies != nil {
		raw, err := json.Marshal(patch.Hobbies)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		add("hobbies", raw)
	}
	if patch.ImageURLs != nil {
		raw, err := json.Marshal(patch.ImageURLs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		add("image_urls", raw)
	}

	query := `UPDATE profiles SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + profileColumns
	profile, err := scanProfile(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// SetProfileActive переключает видимость анкеты в поиске.
func (s *Storage) SetProfileActive(ctx context.Context, userUID string, active bool) error {
	const op = "storage.SetProfileActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE profiles SET is_active = $2, updated_at = NOW() WHERE id = $1`,
		userUID, active)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}

// ListActiveProfiles возвращает страницу активных заполненных анкет,
// исключая анкету самого пользователя и забаненных пользователей.
// Анкета считается заполненной, когда указаны имя и возраст, загружено
// хотя бы одно фото и выбран хотя бы один интерес.
func (s *Storage) ListActiveProfiles(ctx context.Context, viewerUID string, limit, offset int) ([]*models.Profile, error) {
	const op = "storage.ListActiveProfiles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + profileColumns + ` FROM profiles
			  WHERE is_active AND id != $1
				AND id NOT IN (SELECT user_id FROM banned_users WHERE is_active)
				AND name != '' AND age >= 18
				AND jsonb_array_length(image_urls) >= 1
				AND jsonb_array_length(hobbies) >= 1
			  ORDER BY updated_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, viewerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

// ListAllProfiles возвращает страницу всех анкет для панели администратора.
// Непустой search фильтрует по имени и локации без учёта регистра.
func (s *Storage) ListAllProfiles(ctx context.Context, search string, limit, offset int) ([]*models.Profile, error) {
	const op = "storage.ListAllProfiles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + profileColumns + ` FROM profiles
			  WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
