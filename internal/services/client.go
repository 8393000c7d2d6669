package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/senyabanana/creator-marketplace/internal/gate"
	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/repository"
	"github.com/senyabanana/creator-marketplace/internal/utils"
)

// ClientCapabilities - операции заказчика.
type ClientCapabilities struct {
	w       *Workflow
	session models.Session
}

// Kind возвращает роль набора операций.
func (c *ClientCapabilities) Kind() models.Role {
	return models.ClientRole
}

// PostJob публикует новую работу.
func (c *ClientCapabilities) PostJob(ctx context.Context, req models.JobRequest) (*models.Job, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	if err := utils.ValidateStruct(c.w.validate, req); err != nil {
		return nil, err
	}

	budget, err := utils.ParseAmount("budget", req.Budget)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	job, err := c.w.Jobs.CreateJob(ctx, models.Job{
		ClientID:    c.session.Profile.ID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      budget,
		Category:    req.Category,
		Status:      models.PublishedJob,
	})
	if err != nil {
		return nil, models.NewInternalError("failed to post job", err)
	}
	return job, nil
}

// DeleteJob удаляет работу заказчика в любом статусе.
func (c *ClientCapabilities) DeleteJob(ctx context.Context, jobID string) error {
	job, err := c.w.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !gate.IsOwner(c.session.Profile.ID, job) {
		return models.NewErrorResponse(http.StatusForbidden, "only the job owner can delete it")
	}

	if err = c.w.Jobs.DeleteJob(ctx, job.ID, c.session.Profile.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewErrorResponse(http.StatusNotFound, "job not found")
		}
		return models.NewInternalError("failed to delete job", err)
	}
	return nil
}

// DecideProposal принимает или отклоняет ожидающее предложение по своей работе.
func (c *ClientCapabilities) DecideProposal(ctx context.Context, proposalID string, req models.ProposalDecisionRequest) (*models.Proposal, error) {
	if err := utils.ValidateStruct(c.w.validate, req); err != nil {
		return nil, err
	}

	proposal, err := c.w.getProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	job, err := c.w.getJob(ctx, proposal.JobID)
	if err != nil {
		return nil, err
	}
	if !gate.IsOwner(c.session.Profile.ID, job) {
		return nil, models.NewErrorResponse(http.StatusForbidden, "only the job owner can review proposals")
	}

	newStatus := models.ProposalStatus(req.Decision)
	if !utils.ContainsStatus(proposalTransitions[proposal.Status], newStatus) {
		return nil, models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("proposal is already %s", proposal.Status))
	}

	if req.Decision == models.AcceptDecision {
		if !utils.ContainsStatus(jobTransitions[job.Status], models.InProgressJob) {
			return nil, models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("job is %s and cannot accept proposals", job.Status))
		}
		accepted, err := c.w.Proposals.AcceptProposal(ctx, proposal.ID, job.ID)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, models.NewErrorResponse(http.StatusConflict, "proposal can no longer be accepted")
			}
			return nil, models.NewInternalError("failed to accept proposal", err)
		}
		return accepted, nil
	}

	rejected, err := c.w.Proposals.RejectProposal(ctx, proposal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewErrorResponse(http.StatusConflict, "proposal can no longer be rejected")
		}
		return nil, models.NewInternalError("failed to reject proposal", err)
	}
	return rejected, nil
}

// ReviewDeliverable одобряет результат или возвращает его на доработку.
func (c *ClientCapabilities) ReviewDeliverable(ctx context.Context, deliverableID string, req models.ReviewRequest) (*models.Deliverable, error) {
	if err := utils.ValidateStruct(c.w.validate, req); err != nil {
		return nil, err
	}

	var notes *string
	newStatus := models.ApprovedDeliverable
	if req.Decision == models.RevisionDecision {
		if strings.TrimSpace(req.Notes) == "" {
			return nil, models.NewErrorResponse(http.StatusBadRequest, "revision notes are required")
		}
		newStatus = models.NeedsRevisionDeliverable
		notes = &req.Notes
	}

	deliverable, err := c.w.getDeliverable(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	job, err := c.w.getJob(ctx, deliverable.JobID)
	if err != nil {
		return nil, err
	}
	if !gate.IsOwner(c.session.Profile.ID, job) {
		return nil, models.NewErrorResponse(http.StatusForbidden, "only the job owner can review deliverables")
	}
	if !utils.ContainsStatus(deliverableTransitions[deliverable.Status], newStatus) {
		return nil, models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("deliverable is already %s", deliverable.Status))
	}

	reviewed, err := c.w.Deliverables.ReviewDeliverable(ctx, deliverable.ID, newStatus, notes)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewErrorResponse(http.StatusConflict, "deliverable was already reviewed")
		}
		return nil, models.NewInternalError("failed to review deliverable", err)
	}
	return reviewed, nil
}

// Dashboard считает сводку заказчика.
func (c *ClientCapabilities) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	jobs, err := c.w.Jobs.ListJobs(ctx, models.JobFilter{ClientID: c.session.Profile.ID})
	if err != nil {
		return nil, models.NewInternalError("failed to load dashboard", err)
	}

	jobIDs := make([]string, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
	}
	proposals, err := c.w.Proposals.ListProposalsByJobs(ctx, jobIDs, "")
	if err != nil {
		return nil, models.NewInternalError("failed to load dashboard", err)
	}

	stats := ComputeClientStats(jobs, proposals)
	return &stats, nil
}

// MyJobs возвращает работы заказчика со всеми предложениями и результатами.
func (c *ClientCapabilities) MyJobs(ctx context.Context) ([]models.Job, error) {
	jobs, err := c.w.Jobs.ListJobs(ctx, models.JobFilter{ClientID: c.session.Profile.ID})
	if err != nil {
		return nil, models.NewInternalError("failed to load jobs", err)
	}
	jobs, err = c.w.attachChildren(ctx, jobs, "")
	if err != nil {
		return nil, models.NewInternalError("failed to load jobs", err)
	}
	return jobs, nil
}

// JobDetails возвращает свою работу целиком.
func (c *ClientCapabilities) JobDetails(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := c.w.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !gate.IsOwner(c.session.Profile.ID, job) {
		return nil, models.NewErrorResponse(http.StatusForbidden, "job belongs to another client")
	}

	jobs, err := c.w.attachChildren(ctx, []models.Job{*job}, "")
	if err != nil {
		return nil, models.NewInternalError("failed to load job", err)
	}
	return &jobs[0], nil
}

// DownloadDeliverable отдает файл результата по своей работе.
func (c *ClientCapabilities) DownloadDeliverable(ctx context.Context, deliverableID string) (*models.DeliverableDownload, error) {
	deliverable, err := c.w.getDeliverable(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	job, err := c.w.getJob(ctx, deliverable.JobID)
	if err != nil {
		return nil, err
	}
	if !gate.IsOwner(c.session.Profile.ID, job) {
		return nil, models.NewErrorResponse(http.StatusForbidden, "deliverable belongs to another client")
	}
	return c.w.download(ctx, deliverable)
}
