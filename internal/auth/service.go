package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/repository"
	"github.com/senyabanana/creator-marketplace/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Service - провайдер идентификации: регистрация, вход, выход и проверка токенов.
type Service struct {
	Users      repository.UserRepository
	Profiles   repository.ProfileRepository
	Logger     *log.Logger
	Secret     []byte
	TTL        time.Duration
	BcryptCost int
	Now        func() time.Time
	validate   *validator.Validate
}

// NewService создает новый экземпляр Service.
func NewService(users repository.UserRepository, profiles repository.ProfileRepository, logger *log.Logger, secret string, ttl time.Duration) *Service {
	return &Service{
		Users:      users,
		Profiles:   profiles,
		Logger:     logger,
		Secret:     []byte(secret),
		TTL:        ttl,
		BcryptCost: bcrypt.DefaultCost,
		Now:        func() time.Time { return time.Now().UTC() },
		validate:   utils.NewValidator(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp регистрирует пользователя и создает его профиль с выбранной ролью.
func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest) (*models.Profile, error) {
	req.Email = normalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.BcryptCost)
	if err != nil {
		return nil, models.NewInternalError("failed to sign up", err)
	}

	_, profile, err := s.Users.CreateUserWithProfile(ctx, models.User{Email: req.Email, PasswordHash: string(hash)}, req.Role, req.FullName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, models.NewErrorResponse(http.StatusConflict, "email already registered")
		}
		return nil, models.NewInternalError("failed to sign up", err)
	}
	return profile, nil
}

// SignIn проверяет пароль и выдает токен.
func (s *Service) SignIn(ctx context.Context, req models.SignInRequest) (*models.TokenResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	user, err := s.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewErrorResponse(http.StatusUnauthorized, "invalid email or password")
		}
		return nil, models.NewInternalError("failed to sign in", err)
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.NewErrorResponse(http.StatusUnauthorized, "invalid email or password")
	}

	profile, err := s.Profiles.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		return nil, models.NewInternalError("failed to sign in", err)
	}

	token, expiresAt, err := s.issue(user.ID)
	if err != nil {
		return nil, models.NewInternalError("failed to sign in", err)
	}
	return &models.TokenResponse{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}

// SignOut отзывает токен текущего пользователя.
func (s *Service) SignOut(ctx context.Context, p Principal) error {
	if err := s.Users.RevokeToken(ctx, p.TokenID, p.ExpiresAt); err != nil {
		return models.NewInternalError("failed to sign out", err)
	}
	return nil
}

// Session собирает явный контекст операции для пользователя.
func (s *Service) Session(ctx context.Context, p Principal) (models.Session, error) {
	profile, err := s.Profiles.GetProfileByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Session{}, models.NewErrorResponse(http.StatusUnauthorized, "profile not found")
		}
		return models.Session{}, models.NewInternalError("failed to load profile", err)
	}
	return models.Session{UserID: p.UserID, Profile: *profile}, nil
}

func (s *Service) issue(userID string) (string, time.Time, error) {
	now := s.Now()
	expiresAt := now.Add(s.TTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Authenticate проверяет подпись, срок и отзыв токена.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Now),
		jwt.WithExpirationRequired(),
	)
	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return Principal{}, ErrInvalidToken
	}

	revoked, err := s.Users.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return Principal{}, err
	}
	if revoked {
		return Principal{}, ErrTokenRevoked
	}
	return Principal{UserID: claims.Subject, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
