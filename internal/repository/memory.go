package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/google/uuid"
)

var (
	_ UserRepository        = (*PostgresUserRepository)(nil)
	_ ProfileRepository     = (*PostgresProfileRepository)(nil)
	_ JobRepository         = (*PostgresJobRepository)(nil)
	_ ProposalRepository    = (*PostgresProposalRepository)(nil)
	_ DeliverableRepository = (*PostgresDeliverableRepository)(nil)

	_ UserRepository        = (*MemoryStore)(nil)
	_ ProfileRepository     = (*MemoryStore)(nil)
	_ JobRepository         = (*MemoryStore)(nil)
	_ ProposalRepository    = (*MemoryStore)(nil)
	_ DeliverableRepository = (*MemoryStore)(nil)
)

var errCheckViolation = errors.New("new row violates check constraint")

// MemoryStore - реализация всех репозиториев в памяти процесса.
// Правила переходов совпадают с процедурами базы данных: каждая операция
// выполняется целиком под одной блокировкой либо не меняет ничего.
type MemoryStore struct {
	Now func() time.Time

	mu           sync.RWMutex
	seq          int64
	order        map[string]int64
	users        map[string]models.User
	revoked      map[string]time.Time
	profiles     map[string]models.Profile
	jobs         map[string]models.Job
	proposals    map[string]models.Proposal
	deliverables map[string]models.Deliverable
	failures     map[string]error
}

// NewMemoryStore создает пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Now:          func() time.Time { return time.Now().UTC() },
		order:        make(map[string]int64),
		users:        make(map[string]models.User),
		revoked:      make(map[string]time.Time),
		profiles:     make(map[string]models.Profile),
		jobs:         make(map[string]models.Job),
		proposals:    make(map[string]models.Proposal),
		deliverables: make(map[string]models.Deliverable),
		failures:     make(map[string]error),
	}
}

// FailOn заставляет следующий вызов операции op вернуть err.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// failure должен вызываться под блокировкой записи.
func (s *MemoryStore) failure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

func (s *MemoryStore) nextID() string {
	id := uuid.New().String()
	s.seq++
	s.order[id] = s.seq
	return id
}

// newer сортирует записи от новых к старым.
func (s *MemoryStore) newer(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return s.order[aID] > s.order[bID]
}

// CreateUserWithProfile создает учетную запись и профиль.
func (s *MemoryStore) CreateUserWithProfile(ctx context.Context, user models.User, role models.Role, fullName string) (*models.User, *models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("CreateUserWithProfile"); err != nil {
		return nil, nil, err
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return nil, nil, ErrEmailTaken
		}
	}
	if !role.Valid() {
		return nil, nil, errCheckViolation
	}

	now := s.Now()
	newUser := models.User{
		ID:           s.nextID(),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
	}
	newProfile := models.Profile{
		ID:        s.nextID(),
		UserID:    newUser.ID,
		Role:      role,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[newUser.ID] = newUser
	s.profiles[newProfile.ID] = newProfile
	return &newUser, &newProfile, nil
}

// GetUserByEmail возвращает учетную запись по email.
func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// RevokeToken отзывает токен.
func (s *MemoryStore) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked[tokenID] = expiresAt
	now := s.Now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	return nil
}

// IsTokenRevoked проверяет, отозван ли токен.
func (s *MemoryStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.revoked[tokenID]
	return ok, nil
}

// GetProfileByUserID возвращает профиль пользователя.
func (s *MemoryStore) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, profile := range s.profiles {
		if profile.UserID == userID {
			return &profile, nil
		}
	}
	return nil, ErrNotFound
}

// GetProfileByID возвращает профиль по ID.
func (s *MemoryStore) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}

// UpdateProfile обновляет редактируемые поля профиля.
func (s *MemoryStore) UpdateProfile(ctx context.Context, profileID string, req models.ProfileUpdateRequest) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("UpdateProfile"); err != nil {
		return nil, err
	}
	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, ErrNotFound
	}
	profile.FullName = req.FullName
	profile.Bio = nullableString(req.Bio)
	profile.AvatarURL = nullableString(req.AvatarURL)
	profile.UpdatedAt = s.Now()
	s.profiles[profileID] = profile
	return &profile, nil
}

// CreateJob создает новую работу.
func (s *MemoryStore) CreateJob(ctx context.Context, job models.Job) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("CreateJob"); err != nil {
		return nil, err
	}
	if _, ok := s.profiles[job.ClientID]; !ok {
		return nil, ErrNotFound
	}
	if job.Budget < 0 {
		return nil, fmt.Errorf("jobs.budget: %w", errCheckViolation)
	}

	newJob := job
	newJob.ID = s.nextID()
	newJob.CreatedAt = s.Now()
	newJob.Proposals = nil
	s.jobs[newJob.ID] = newJob
	return &newJob, nil
}

// GetJobByID возвращает работу по ID.
func (s *MemoryStore) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	return &job, nil
}

// ListJobs возвращает работы по фильтру, новые первыми.
func (s *MemoryStore) ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := []models.Job{}
	for _, job := range s.jobs {
		if s.matchJob(job, filter) {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return s.newer(jobs[i].ID, jobs[i].CreatedAt, jobs[j].ID, jobs[j].CreatedAt)
	})

	if filter.Limit > 0 {
		if filter.Offset >= len(jobs) {
			return []models.Job{}, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(jobs) {
			end = len(jobs)
		}
		jobs = jobs[filter.Offset:end]
	}
	return jobs, nil
}

func (s *MemoryStore) matchJob(job models.Job, filter models.JobFilter) bool {
	if len(filter.Statuses) > 0 && !containsValue(filter.Statuses, job.Status) {
		return false
	}
	if filter.ClientID != "" && job.ClientID != filter.ClientID {
		return false
	}
	if len(filter.Categories) > 0 && !containsValue(filter.Categories, job.Category) {
		return false
	}
	if filter.CreatorID != "" {
		for _, p := range s.proposals {
			if p.JobID == job.ID && p.CreatorID == filter.CreatorID {
				return true
			}
		}
		return false
	}
	return true
}

func containsValue[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// DeleteJob удаляет работу заказчика вместе с предложениями и результатами.
func (s *MemoryStore) DeleteJob(ctx context.Context, jobID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("DeleteJob"); err != nil {
		return err
	}
	job, ok := s.jobs[jobID]
	if !ok || job.ClientID != clientID {
		return ErrNotFound
	}
	delete(s.jobs, jobID)
	for id, p := range s.proposals {
		if p.JobID == jobID {
			delete(s.proposals, id)
		}
	}
	for id, d := range s.deliverables {
		if d.JobID == jobID {
			delete(s.deliverables, id)
		}
	}
	return nil
}

// CreateProposal создает предложение, если работа опубликована.
func (s *MemoryStore) CreateProposal(ctx context.Context, proposal models.Proposal) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("CreateProposal"); err != nil {
		return nil, err
	}
	job, ok := s.jobs[proposal.JobID]
	if !ok {
		return nil, ErrNotFound
	}
	if _, ok := s.profiles[proposal.CreatorID]; !ok {
		return nil, ErrNotFound
	}
	if job.Status != models.PublishedJob {
		return nil, ErrConflict
	}
	if proposal.Price < 0 {
		return nil, fmt.Errorf("proposals.price: %w", errCheckViolation)
	}

	newProposal := proposal
	newProposal.ID = s.nextID()
	newProposal.Status = models.PendingProposal
	newProposal.CreatedAt = s.Now()
	newProposal.CreatorName = ""
	newProposal.Deliverables = nil
	s.proposals[newProposal.ID] = newProposal
	return &newProposal, nil
}

// GetProposalByID возвращает предложение по ID.
func (s *MemoryStore) GetProposalByID(ctx context.Context, proposalID string) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return nil, ErrNotFound
	}
	return &proposal, nil
}

// ListProposalsByJobs возвращает предложения по набору работ вместе с именем исполнителя.
func (s *MemoryStore) ListProposalsByJobs(ctx context.Context, jobIDs []string, creatorID string) ([]models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposals := []models.Proposal{}
	for _, p := range s.proposals {
		if !containsValue(jobIDs, p.JobID) {
			continue
		}
		if creatorID != "" && p.CreatorID != creatorID {
			continue
		}
		p.CreatorName = s.profiles[p.CreatorID].FullName
		proposals = append(proposals, p)
	}
	sort.Slice(proposals, func(i, j int) bool {
		return s.newer(proposals[i].ID, proposals[i].CreatedAt, proposals[j].ID, proposals[j].CreatedAt)
	})
	return proposals, nil
}

// ListProposalsByCreator возвращает предложения исполнителя со статусами их работ.
func (s *MemoryStore) ListProposalsByCreator(ctx context.Context, creatorID string) ([]models.CreatorProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposals := []models.CreatorProposal{}
	for _, p := range s.proposals {
		if p.CreatorID != creatorID {
			continue
		}
		proposals = append(proposals, models.CreatorProposal{Proposal: p, JobStatus: s.jobs[p.JobID].Status})
	}
	sort.Slice(proposals, func(i, j int) bool {
		return s.newer(proposals[i].ID, proposals[i].CreatedAt, proposals[j].ID, proposals[j].CreatedAt)
	})
	return proposals, nil
}

// AcceptProposal принимает предложение, отклоняет остальные ожидающие и запускает работу.
func (s *MemoryStore) AcceptProposal(ctx context.Context, proposalID, jobID string) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("AcceptProposal"); err != nil {
		return nil, err
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	proposal, ok := s.proposals[proposalID]
	if !ok || proposal.JobID != jobID {
		return nil, ErrNotFound
	}
	if proposal.Status != models.PendingProposal {
		return nil, fmt.Errorf("%w: proposal %s is %s", ErrConflict, proposalID, proposal.Status)
	}
	if job.Status != models.PublishedJob {
		return nil, fmt.Errorf("%w: job %s is %s", ErrConflict, jobID, job.Status)
	}

	proposal.Status = models.AcceptedProposal
	s.proposals[proposalID] = proposal
	for id, sibling := range s.proposals {
		if sibling.JobID == jobID && id != proposalID && sibling.Status == models.PendingProposal {
			sibling.Status = models.RejectedProposal
			s.proposals[id] = sibling
		}
	}
	job.Status = models.InProgressJob
	s.jobs[jobID] = job
	return &proposal, nil
}

// RejectProposal отклоняет ожидающее предложение.
func (s *MemoryStore) RejectProposal(ctx context.Context, proposalID string) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("RejectProposal"); err != nil {
		return nil, err
	}
	proposal, ok := s.proposals[proposalID]
	if !ok || proposal.Status != models.PendingProposal {
		return nil, ErrConflict
	}
	proposal.Status = models.RejectedProposal
	s.proposals[proposalID] = proposal
	return &proposal, nil
}

// SubmitDeliverable сохраняет результат и завершает работу.
func (s *MemoryStore) SubmitDeliverable(ctx context.Context, submission models.DeliverableSubmission) (*models.Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("SubmitDeliverable"); err != nil {
		return nil, err
	}
	job, ok := s.jobs[submission.JobID]
	if !ok {
		return nil, ErrNotFound
	}
	proposal, ok := s.proposals[submission.ProposalID]
	if !ok || proposal.JobID != submission.JobID {
		return nil, ErrNotFound
	}
	if proposal.Status != models.AcceptedProposal {
		return nil, fmt.Errorf("%w: proposal %s is %s", ErrConflict, proposal.ID, proposal.Status)
	}
	switch job.Status {
	case models.InProgressJob:
	case models.CompletedJob:
		latest := s.latestDeliverable(proposal.ID)
		if latest == nil || latest.Status != models.NeedsRevisionDeliverable {
			return nil, fmt.Errorf("%w: job %s is completed and no revision was requested", ErrConflict, job.ID)
		}
	default:
		return nil, fmt.Errorf("%w: job %s is %s", ErrConflict, job.ID, job.Status)
	}

	d := models.Deliverable{
		ID:           s.nextID(),
		ProposalID:   submission.ProposalID,
		JobID:        submission.JobID,
		Content:      submission.Content,
		FilePath:     submission.FilePath,
		ExternalLink: submission.ExternalLink,
		Status:       models.PendingReviewDeliverable,
		CreatedAt:    s.Now(),
	}
	s.deliverables[d.ID] = d
	job.Status = models.CompletedJob
	s.jobs[job.ID] = job
	return &d, nil
}

func (s *MemoryStore) latestDeliverable(proposalID string) *models.Deliverable {
	var latest *models.Deliverable
	for _, d := range s.deliverables {
		if d.ProposalID != proposalID {
			continue
		}
		if latest == nil || s.newer(d.ID, d.CreatedAt, latest.ID, latest.CreatedAt) {
			d := d
			latest = &d
		}
	}
	return latest
}

// GetDeliverableByID возвращает результат по ID.
func (s *MemoryStore) GetDeliverableByID(ctx context.Context, deliverableID string) (*models.Deliverable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deliverables[deliverableID]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// GetLatestDeliverable возвращает последний результат по предложению.
func (s *MemoryStore) GetLatestDeliverable(ctx context.Context, proposalID string) (*models.Deliverable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := s.latestDeliverable(proposalID)
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

// ListDeliverablesByProposals возвращает результаты по набору предложений, новые первыми.
func (s *MemoryStore) ListDeliverablesByProposals(ctx context.Context, proposalIDs []string) ([]models.Deliverable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deliverables := []models.Deliverable{}
	for _, d := range s.deliverables {
		if containsValue(proposalIDs, d.ProposalID) {
			deliverables = append(deliverables, d)
		}
	}
	sort.Slice(deliverables, func(i, j int) bool {
		return s.newer(deliverables[i].ID, deliverables[i].CreatedAt, deliverables[j].ID, deliverables[j].CreatedAt)
	})
	return deliverables, nil
}

// ReviewDeliverable фиксирует решение заказчика по результату.
func (s *MemoryStore) ReviewDeliverable(ctx context.Context, deliverableID string, status models.DeliverableStatus, notes *string) (*models.Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failure("ReviewDeliverable"); err != nil {
		return nil, err
	}
	d, ok := s.deliverables[deliverableID]
	if !ok || d.Status != models.PendingReviewDeliverable {
		return nil, ErrConflict
	}
	d.Status = status
	d.RevisionNotes = notes
	s.deliverables[deliverableID] = d
	return &d, nil
}
