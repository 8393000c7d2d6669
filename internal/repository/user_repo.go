package repository

import (
	"context"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository - интерфейс для работы с учетными записями.
type UserRepository interface {
	CreateUserWithProfile(ctx context.Context, user models.User, role models.Role, fullName string) (*models.User, *models.Profile, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresUserRepository создает новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUserWithProfile создает учетную запись и профиль в одной транзакции.
func (r *PostgresUserRepository) CreateUserWithProfile(ctx context.Context, user models.User, role models.Role, fullName string) (*models.User, *models.Profile, error) {
	now := time.Now().UTC()
	newUser := models.User{
		ID:           uuid.New().String(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
	}
	newProfile := models.Profile{
		ID:        uuid.New().String(),
		UserID:    newUser.ID,
		Role:      role,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	userQuery := `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	if _, err = tx.Exec(ctx, userQuery, newUser.ID, newUser.Email, newUser.PasswordHash, newUser.CreatedAt); err != nil {
		return nil, nil, mapError(err)
	}

	profileQuery := `INSERT INTO profiles (id, user_id, role, full_name, created_at, updated_at)
                     VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = tx.Exec(
		ctx,
		profileQuery,
		newProfile.ID,
		newProfile.UserID,
		newProfile.Role,
		newProfile.FullName,
		newProfile.CreatedAt,
		newProfile.UpdatedAt)
	if err != nil {
		return nil, nil, mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return &newUser, &newProfile, nil
}

// GetUserByEmail возвращает учетную запись по email.
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	err := r.DB.QueryRow(ctx, query, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

// RevokeToken отзывает токен до истечения его срока.
func (r *PostgresUserRepository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	query := `INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2) ON CONFLICT (jti) DO NOTHING`
	if _, err := r.DB.Exec(ctx, query, tokenID, expiresAt); err != nil {
		return err
	}

	// Отозванные токены с истекшим сроком больше не нужны.
	_, err := r.DB.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, time.Now().UTC())
	return err
}

// IsTokenRevoked проверяет, отозван ли токен.
func (r *PostgresUserRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`
	err := r.DB.QueryRow(ctx, query, tokenID).Scan(&revoked)
	return revoked, err
}
