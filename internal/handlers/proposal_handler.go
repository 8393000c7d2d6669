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

// ProposalHandler - структура для обработки запросов по предложениям.
type ProposalHandler struct {
	Workflow *services.Workflow
	Sessions SessionLoader
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewProposalHandler создает новый экземпляр ProposalHandler.
func NewProposalHandler(workflow *services.Workflow, sessions SessionLoader, logger *log.Logger, timeout time.Duration) *ProposalHandler {
	return &ProposalHandler{
		Workflow: workflow,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// SubmitProposal обрабатывает запросы исполнителя на отправку предложения.
func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	creator, err := h.Workflow.Creator(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to submit proposal")
		return
	}

	var req models.ProposalRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := creator.SubmitProposal(ctx, chi.URLParam(r, "jobId"), req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to submit proposal")
		return
	}
	sendJSON(w, h.Logger, http.StatusCreated, proposal)
}

// DecideProposal обрабатывает решение заказчика по предложению.
func (h *ProposalHandler) DecideProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	session, ok := loadSession(ctx, w, r, h.Sessions, h.Logger)
	if !ok {
		return
	}
	client, err := h.Workflow.Client(session)
	if err != nil {
		sendError(w, h.Logger, err, "failed to update proposal")
		return
	}

	var req models.ProposalDecisionRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := client.DecideProposal(ctx, chi.URLParam(r, "proposalId"), req)
	if err != nil {
		sendError(w, h.Logger, err, "failed to update proposal")
		return
	}
	sendJSON(w, h.Logger, http.StatusOK, proposal)
}
