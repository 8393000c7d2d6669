package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/auth"
	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/utils"
)

// AuthHandler - структура для обработки запросов регистрации и входа.
type AuthHandler struct {
	Service *auth.Service
	Logger  *log.Logger
	Timeout time.Duration
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(service *auth.Service, logger *log.Logger, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// SignUp обрабатывает регистрацию пользователя.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.Service.SignUp(ctx, req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to sign up")
		return
	}
	sendJSON(w, h.Logger, http.StatusCreated, profile)
}

// SignIn обрабатывает вход и возвращает токен.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.SignIn(ctx, req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to sign in")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, token)
}

// SignOut отзывает текущий токен.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.Service.SignOut(ctx, principal); err != nil {
		sendError(w, h.Logger, err, "failed to sign out")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
