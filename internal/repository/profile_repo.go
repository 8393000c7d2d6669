package repository

import (
	"context"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository - интерфейс для работы с профилями.
type ProfileRepository interface {
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetProfileByID(ctx context.Context, profileID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profileID string, req models.ProfileUpdateRequest) (*models.Profile, error)
}

// PostgresProfileRepository - реализация ProfileRepository для базы данных.
type PostgresProfileRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProfileRepository создает новый экземпляр PostgresProfileRepository.
func NewPostgresProfileRepository(db *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{DB: db}
}

const profileColumns = `id, user_id, role, full_name, bio, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Role,
		&profile.FullName,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &profile, nil
}

// GetProfileByUserID возвращает профиль пользователя.
func (r *PostgresProfileRepository) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.DB.QueryRow(ctx, query, userID))
}

// GetProfileByID возвращает профиль по его ID.
func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.DB.QueryRow(ctx, query, profileID))
}

// UpdateProfile обновляет редактируемые поля профиля. Пустые bio и avatarUrl очищаются.
func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, profileID string, req models.ProfileUpdateRequest) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = $2, bio = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.DB.QueryRow(
		ctx,
		query,
		profileID,
		req.FullName,
		nullableString(req.Bio),
		nullableString(req.AvatarURL),
		time.Now().UTC()))
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
