package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"
	"github.com/senyabanana/creator-marketplace/internal/repository"
	"github.com/senyabanana/creator-marketplace/internal/storage"
	"github.com/senyabanana/creator-marketplace/internal/utils"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxUploadBytes - предельный размер файла результата.
const DefaultMaxUploadBytes int64 = 50 * 1024 * 1024

// DefaultDownloadTimeout ограничивает общее чтение файла из хранилища.
const DefaultDownloadTimeout = 30 * time.Second

// Допустимые переходы статусов. Статусы двигаются только вперед.
var (
	jobTransitions = map[models.JobStatus][]models.JobStatus{
		models.DraftJob:      {models.PublishedJob},
		models.PublishedJob:  {models.InProgressJob},
		models.InProgressJob: {models.CompletedJob},
	}
	proposalTransitions = map[models.ProposalStatus][]models.ProposalStatus{
		models.PendingProposal: {models.AcceptedProposal, models.RejectedProposal},
	}
	deliverableTransitions = map[models.DeliverableStatus][]models.DeliverableStatus{
		models.PendingReviewDeliverable: {models.ApprovedDeliverable, models.NeedsRevisionDeliverable},
	}
)

// Role - операции, доступные пользователю любой роли.
type Role interface {
	Kind() models.Role
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	MyJobs(ctx context.Context) ([]models.Job, error)
	JobDetails(ctx context.Context, jobID string) (*models.Job, error)
	DownloadDeliverable(ctx context.Context, deliverableID string) (*models.DeliverableDownload, error)
}

// Workflow - ядро жизненного цикла работ. Выдает набор операций по роли сессии.
type Workflow struct {
	Jobs           repository.JobRepository
	Proposals      repository.ProposalRepository
	Deliverables   repository.DeliverableRepository
	Blobs          storage.BlobStore
	Logger         *log.Logger
	MaxUploadBytes int64
	// DownloadTimeout ограничивает чтение, разделяемое несколькими запросами.
	DownloadTimeout time.Duration
	validate        *validator.Validate
	downloads       singleflight.Group
}

// NewWorkflow создает новый экземпляр Workflow.
func NewWorkflow(
	jobs repository.JobRepository,
	proposals repository.ProposalRepository,
	deliverables repository.DeliverableRepository,
	blobs storage.BlobStore,
	logger *log.Logger,
	maxUploadBytes int64,
) *Workflow {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Workflow{
		Jobs:            jobs,
		Proposals:       proposals,
		Deliverables:    deliverables,
		Blobs:           blobs,
		Logger:          logger,
		MaxUploadBytes:  maxUploadBytes,
		DownloadTimeout: DefaultDownloadTimeout,
		validate:        utils.NewValidator(),
	}
}

// Client возвращает операции заказчика. Проверка роли выполняется только здесь.
func (w *Workflow) Client(session models.Session) (*ClientCapabilities, error) {
	if session.Profile.Role != models.ClientRole {
		return nil, models.NewErrorResponse(http.StatusForbidden, "operation is available to clients only")
	}
	return &ClientCapabilities{w: w, session: session}, nil
}

// Creator возвращает операции исполнителя.
func (w *Workflow) Creator(session models.Session) (*CreatorCapabilities, error) {
	if session.Profile.Role != models.CreatorRole {
		return nil, models.NewErrorResponse(http.StatusForbidden, "operation is available to creators only")
	}
	return &CreatorCapabilities{w: w, session: session}, nil
}

// ForSession возвращает общие операции для роли сессии.
func (w *Workflow) ForSession(session models.Session) (Role, error) {
	switch session.Profile.Role {
	case models.ClientRole:
		return &ClientCapabilities{w: w, session: session}, nil
	case models.CreatorRole:
		return &CreatorCapabilities{w: w, session: session}, nil
	}
	return nil, models.NewErrorResponse(http.StatusForbidden, "unknown role")
}

func (w *Workflow) getJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := w.Jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewErrorResponse(http.StatusNotFound, "job not found")
		}
		return nil, models.NewInternalError("failed to load job", err)
	}
	return job, nil
}

func (w *Workflow) getProposal(ctx context.Context, proposalID string) (*models.Proposal, error) {
	proposal, err := w.Proposals.GetProposalByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewErrorResponse(http.StatusNotFound, "proposal not found")
		}
		return nil, models.NewInternalError("failed to load proposal", err)
	}
	return proposal, nil
}

func (w *Workflow) getDeliverable(ctx context.Context, deliverableID string) (*models.Deliverable, error) {
	deliverable, err := w.Deliverables.GetDeliverableByID(ctx, deliverableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewErrorResponse(http.StatusNotFound, "deliverable not found")
		}
		return nil, models.NewInternalError("failed to load deliverable", err)
	}
	return deliverable, nil
}

// attachChildren раскладывает предложения и результаты по работам.
func (w *Workflow) attachChildren(ctx context.Context, jobs []models.Job, creatorID string) ([]models.Job, error) {
	if len(jobs) == 0 {
		return jobs, nil
	}

	jobIDs := make([]string, 0, len(jobs))
	for _, job := range jobs {
		jobIDs = append(jobIDs, job.ID)
	}
	proposals, err := w.Proposals.ListProposalsByJobs(ctx, jobIDs, creatorID)
	if err != nil {
		return nil, err
	}

	proposalIDs := make([]string, 0, len(proposals))
	for _, p := range proposals {
		proposalIDs = append(proposalIDs, p.ID)
	}
	deliverables, err := w.Deliverables.ListDeliverablesByProposals(ctx, proposalIDs)
	if err != nil {
		return nil, err
	}

	byProposal := make(map[string][]models.Deliverable)
	for _, d := range deliverables {
		byProposal[d.ProposalID] = append(byProposal[d.ProposalID], d)
	}
	byJob := make(map[string][]models.Proposal)
	for _, p := range proposals {
		p.Deliverables = byProposal[p.ID]
		byJob[p.JobID] = append(byJob[p.JobID], p)
	}
	for i := range jobs {
		jobs[i].Proposals = byJob[jobs[i].ID]
	}
	return jobs, nil
}

// download читает файл результата. Одновременные запросы одного результата
// разделяют одно обращение к хранилищу. Общее чтение не зависит от отмены
// запроса, который его начал; каждый запрос ждет результат в пределах своего ctx.
func (w *Workflow) download(ctx context.Context, deliverable *models.Deliverable) (*models.DeliverableDownload, error) {
	if deliverable.FilePath == nil || *deliverable.FilePath == "" {
		return nil, models.NewErrorResponse(http.StatusNotFound, "deliverable has no file")
	}
	filePath := *deliverable.FilePath

	fetch := w.downloads.DoChan(deliverable.ID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.DownloadTimeout)
		defer cancel()
		return w.Blobs.Download(fetchCtx, filePath)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, models.NewInternalError("failed to download file", ctx.Err())
	case res = <-fetch:
	}
	data, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, models.NewErrorResponse(http.StatusNotFound, "file not found")
		}
		return nil, models.NewInternalError("failed to download file", err)
	}
	return &models.DeliverableDownload{FileName: path.Base(filePath), Data: data.([]byte)}, nil
}
