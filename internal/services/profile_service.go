package services

import (
	"context"
	"strings"

	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/repository"
	"github.com/senyabanana/creator-marketplace/internal/utils"

	"github.com/go-playground/validator/v10"
)

type ProfileService struct {
	Repo     repository.ProfileRepository
	validate *validator.Validate
}

// NewProfileService создает новый экземпляр ProfileService.
func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{Repo: repo, validate: utils.NewValidator()}
}

// GetProfile возвращает профиль текущего пользователя.
func (s *ProfileService) GetProfile(session models.Session) *models.Profile {
	profile := session.Profile
	return &profile
}

// UpdateProfile обновляет имя, описание и аватар. Роль не меняется.
func (s *ProfileService) UpdateProfile(ctx context.Context, session models.Session, req models.ProfileUpdateRequest) (*models.Profile, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Bio = strings.TrimSpace(req.Bio)
	req.AvatarURL = strings.TrimSpace(req.AvatarURL)
	if err := utils.ValidateStruct(s.validate, req); err != nil {
		return nil, err
	}

	profile, err := s.Repo.UpdateProfile(ctx, session.Profile.ID, req)
	if err != nil {
		return nil, models.NewInternalError("failed to update profile", err)
	}
	return profile, nil
}
