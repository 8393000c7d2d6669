package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/services"
)

// DashboardHandler - структура для обработки запросов сводки.
type DashboardHandler struct {
	Workflow *services.Workflow
	Sessions SessionLoader
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewDashboardHandler создает новый экземпляр DashboardHandler.
func NewDashboardHandler(workflow *services.Workflow, sessions SessionLoader, logger *log.Logger, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{
		Workflow: workflow,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// GetDashboard возвращает сводку по роли текущего пользователя.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	role, err := h.Workflow.ForSession(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to load dashboard")
		return
	}

	stats, err := role.Dashboard(ctx)
	if err != nil {
		sendError(w, h.Logger, err, "failed to load dashboard")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, stats)
}
