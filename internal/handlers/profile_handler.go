package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/services"
	"github.com/senyabanana/creator-marketplace/internal/utils"
)

// ProfileHandler - структура для обработки запросов профиля.
type ProfileHandler struct {
	Service  *services.ProfileService
	Sessions SessionLoader
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewProfileHandler создает новый экземпляр ProfileHandler.
func NewProfileHandler(service *services.ProfileService, sessions SessionLoader, logger *log.Logger, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{
		Service:  service,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// GetProfile возвращает профиль текущего пользователя.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, h.Service.GetProfile(session))
}

// UpdateProfile обновляет профиль текущего пользователя.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}

	var req models.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.Service.UpdateProfile(ctx, session, req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to update profile")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, profile)
}
