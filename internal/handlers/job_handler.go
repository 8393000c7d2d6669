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

	"github.com/go-chi/chi/v5"
)

// JobHandler - структура для обработки запросов по работам.
type JobHandler struct {
	Workflow *services.Workflow
	Sessions SessionLoader
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewJobHandler создает новый экземпляр JobHandler.
func NewJobHandler(workflow *services.Workflow, sessions SessionLoader, logger *log.Logger, timeout time.Duration) *JobHandler {
	return &JobHandler{
		Workflow: workflow,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// PostJob обрабатывает запросы для публикации работы.
func (h *JobHandler) PostJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	client, err := h.Workflow.Client(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to post job")
		return
	}

	var req models.JobRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := client.PostJob(ctx, req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to post job")
		return
	}
	sendJSON(w, h.Logger, http.StatusCreated, job)
}

// BrowseJobs обрабатывает запросы для получения опубликованных работ.
// Маршрут закрыт гейтом: сюда доходят только исполнители.
func (h *JobHandler) BrowseJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	creator, err := h.Workflow.Creator(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to load jobs")
		return
	}

	query := r.URL.Query()
	jobs, err := creator.BrowseJobs(ctx, utils.ParseCategories(query["category"]), query.Get("limit"), query.Get("offset"))
	if err != nil {
		sendError(w, h.Logger, err, "failed to load jobs")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, jobs)
}

// MyJobs обрабатывает запросы для получения работ текущего пользователя.
func (h *JobHandler) MyJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	role, err := h.Workflow.ForSession(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to load jobs")
		return
	}

	jobs, err := role.MyJobs(ctx)
	if err != nil {
		sendError(w, h.Logger, err, "failed to load jobs")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, jobs)
}

// GetJob обрабатывает запросы для получения работы по ID.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	role, err := h.Workflow.ForSession(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to load job")
		return
	}

	job, err := role.JobDetails(ctx, chi.URLParam(r, "jobId"))
	if err != nil {
		sendError(w, h.Logger, err, "failed to load job")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, job)
}

// DeleteJob обрабатывает запросы для удаления работы.
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	client, err := h.Workflow.Client(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to delete job")
		return
	}

	if err = client.DeleteJob(ctx, chi.URLParam(r, "jobId")); err != nil {
		sendError(w, h.Logger, err, "failed to delete job")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
