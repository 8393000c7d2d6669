package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/senyabanana/creator-marketplace/internal/auth"
	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/utils"
)

// SessionLoader собирает сессию операции по аутентифицированному пользователю.
type SessionLoader interface {
	Session(ctx context.Context, p auth.Principal) (models.Session, error)
}

// sendError пишет ошибку сервиса. Ошибки без кода скрываются за fallback.
func sendError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	logger.Println(err)
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		utils.SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Message)
		return
	}
	utils.SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

func loadSession(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions SessionLoader, logger *log.Logger) (models.Session, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return models.Session{}, false
	}
	session, err := sessions.Session(ctx, principal)
	if err != nil {
		sendError(w, logger, err, "failed to load profile")
		return models.Session{}, false
	}
	return session, true
}

func sendJSON(w http.ResponseWriter, logger *log.Logger, statusCode int, body any) {
	if err := utils.SendJSON(w, statusCode, body); err != nil {
		logger.Println(err)
	}
}
