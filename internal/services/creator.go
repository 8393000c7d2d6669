package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/senyabanana/creator-marketplace/internal/gate"
	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/repository"
	"github.com/senyabanana/creator-marketplace/internal/storage"
	"github.com/senyabanana/creator-marketplace/internal/utils"
)

// CreatorCapabilities - операции исполнителя.
type CreatorCapabilities struct {
	w       *Workflow
	session models.Session
}

// Kind возвращает роль набора операций.
func (c *CreatorCapabilities) Kind() models.Role {
	return models.CreatorRole
}

// BrowseJobs возвращает опубликованные работы, новые первыми.
func (c *CreatorCapabilities) BrowseJobs(ctx context.Context, categories []string, limitStr, offsetStr string) ([]models.Job, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	jobs, err := c.w.Jobs.ListJobs(ctx, models.JobFilter{
		Statuses:   []models.JobStatus{models.PublishedJob},
		Categories: categories,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, models.NewInternalError("failed to load jobs", err)
	}
	return jobs, nil
}

// SubmitProposal отправляет предложение по опубликованной работе.
func (c *CreatorCapabilities) SubmitProposal(ctx context.Context, jobID string, req models.ProposalRequest) (*models.Proposal, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := utils.ValidateStruct(c.w.validate, req); err != nil {
		return nil, err
	}
	price, err := utils.ParseAmount("price", req.Price)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	job, err := c.w.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.PublishedJob {
		return nil, models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("job is %s and does not accept proposals", job.Status))
	}

	proposal, err := c.w.Proposals.CreateProposal(ctx, models.Proposal{
		JobID:       job.ID,
		CreatorID:   c.session.Profile.ID,
		Price:       price,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewErrorResponse(http.StatusConflict, "job no longer accepts proposals")
		}
		return nil, models.NewInternalError("failed to submit proposal", err)
	}
	return proposal, nil
}

// SubmitDeliverable сдает результат по принятому предложению и завершает работу.
// Размер файла проверяется до любого обращения к хранилищу.
func (c *CreatorCapabilities) SubmitDeliverable(ctx context.Context, req models.DeliverableRequest) (*models.Deliverable, error) {
	req.Content = strings.TrimSpace(req.Content)
	req.ExternalLink = strings.TrimSpace(req.ExternalLink)
	if err := utils.ValidateStruct(c.w.validate, req); err != nil {
		return nil, err
	}
	if req.File != nil && req.File.Size > c.w.MaxUploadBytes {
		return nil, models.NewErrorResponse(http.StatusBadRequest, FileTooLargeMessage(c.w.MaxUploadBytes))
	}

	proposal, err := c.w.getProposal(ctx, req.ProposalID)
	if err != nil {
		return nil, err
	}
	if !gate.IsOwner(c.session.Profile.ID, proposal) {
		return nil, models.NewErrorResponse(http.StatusForbidden, "proposal belongs to another creator")
	}
	if proposal.Status != models.AcceptedProposal {
		return nil, models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("proposal is %s, only accepted proposals take deliverables", proposal.Status))
	}
	job, err := c.w.getJob(ctx, proposal.JobID)
	if err != nil {
		return nil, err
	}
	if err = c.checkCanDeliver(ctx, job, proposal.ID); err != nil {
		return nil, err
	}

	submission := models.DeliverableSubmission{
		ProposalID: proposal.ID,
		JobID:      job.ID,
		Content:    req.Content,
	}
	if req.ExternalLink != "" {
		submission.ExternalLink = &req.ExternalLink
	}

	if req.File != nil {
		objectPath := storage.RandomObjectPath(proposal.ID, req.File.Name)
		reader := &maxBytesReader{r: req.File.Reader, remaining: c.w.MaxUploadBytes}
		if err = c.w.Blobs.Upload(ctx, objectPath, reader); err != nil {
			if errors.Is(err, errFileTooLarge) {
				return nil, models.NewErrorResponse(http.StatusBadRequest, FileTooLargeMessage(c.w.MaxUploadBytes))
			}
			return nil, models.NewInternalError("failed to submit deliverable", err)
		}
		submission.FilePath = &objectPath
	}

	deliverable, err := c.w.Deliverables.SubmitDeliverable(ctx, submission)
	if err != nil {
		if submission.FilePath != nil {
			if delErr := c.w.Blobs.Delete(ctx, *submission.FilePath); delErr != nil {
				c.w.Logger.Printf("failed to remove orphaned file %s: %v", *submission.FilePath, delErr)
			}
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewErrorResponse(http.StatusConflict, "deliverable can no longer be submitted for this job")
		}
		return nil, models.NewInternalError("failed to submit deliverable", err)
	}
	return deliverable, nil
}

// checkCanDeliver пускает сдачу результата по работе в процессе,
// а по завершенной работе только после запроса доработки.
func (c *CreatorCapabilities) checkCanDeliver(ctx context.Context, job *models.Job, proposalID string) error {
	if utils.ContainsStatus(jobTransitions[job.Status], models.CompletedJob) {
		return nil
	}
	if job.Status != models.CompletedJob {
		return models.NewErrorResponse(http.StatusConflict, fmt.Sprintf("job is %s and does not take deliverables", job.Status))
	}

	latest, err := c.w.Deliverables.GetLatestDeliverable(ctx, proposalID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.NewInternalError("failed to submit deliverable", err)
	}
	if latest == nil || latest.Status != models.NeedsRevisionDeliverable {
		return models.NewErrorResponse(http.StatusConflict, "job is completed and no revision was requested")
	}
	return nil
}

var errFileTooLarge = errors.New("file exceeds upload limit")

// maxBytesReader не дает записать больше заявленного предела,
// даже если фактический размер файла расходится с заголовком.
type maxBytesReader struct {
	r         io.Reader
	remaining int64
}

func (m *maxBytesReader) Read(p []byte) (int, error) {
	if m.remaining < 0 {
		return 0, errFileTooLarge
	}
	if int64(len(p)) > m.remaining+1 {
		p = p[:m.remaining+1]
	}
	n, err := m.r.Read(p)
	m.remaining -= int64(n)
	if m.remaining < 0 {
		return 0, errFileTooLarge
	}
	return n, err
}

// FileTooLargeMessage - сообщение об отказе в загрузке слишком большого файла.
func FileTooLargeMessage(limit int64) string {
	return fmt.Sprintf("file is too large: maximum size is %d MB", limit/(1024*1024))
}

// Dashboard считает сводку исполнителя.
func (c *CreatorCapabilities) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	proposals, err := c.w.Proposals.ListProposalsByCreator(ctx, c.session.Profile.ID)
	if err != nil {
		return nil, models.NewInternalError("failed to load dashboard", err)
	}
	stats := ComputeCreatorStats(proposals)
	return &stats, nil
}

// MyJobs возвращает работы, по которым исполнитель отправлял предложения,
// только с его собственными предложениями и результатами.
func (c *CreatorCapabilities) MyJobs(ctx context.Context) ([]models.Job, error) {
	jobs, err := c.w.Jobs.ListJobs(ctx, models.JobFilter{CreatorID: c.session.Profile.ID})
	if err != nil {
		return nil, models.NewInternalError("failed to load jobs", err)
	}
	jobs, err = c.w.attachChildren(ctx, jobs, c.session.Profile.ID)
	if err != nil {
		return nil, models.NewInternalError("failed to load jobs", err)
	}
	return jobs, nil
}

// JobDetails возвращает опубликованную работу с собственными предложениями исполнителя.
func (c *CreatorCapabilities) JobDetails(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := c.w.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.PublishedJob {
		return nil, models.NewErrorResponse(http.StatusForbidden, "job is not published")
	}

	jobs, err := c.w.attachChildren(ctx, []models.Job{*job}, c.session.Profile.ID)
	if err != nil {
		return nil, models.NewInternalError("failed to load job", err)
	}
	return &jobs[0], nil
}

// DownloadDeliverable отдает файл собственного результата.
func (c *CreatorCapabilities) DownloadDeliverable(ctx context.Context, deliverableID string) (*models.DeliverableDownload, error) {
	deliverable, err := c.w.getDeliverable(ctx, deliverableID)
	if err != nil {
		return nil, err
	}
	proposal, err := c.w.getProposal(ctx, deliverable.ProposalID)
	if err != nil {
		return nil, err
	}
	if !gate.IsOwner(c.session.Profile.ID, proposal) {
		return nil, models.NewErrorResponse(http.StatusForbidden, "deliverable belongs to another creator")
	}
	return c.w.download(ctx, deliverable)
}
