package repository

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// ProposalRepository - интерфейс для работы с предложениями.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal models.Proposal) (*models.Proposal, error)
	GetProposalByID(ctx context.Context, proposalID string) (*models.Proposal, error)
	ListProposalsByJobs(ctx context.Context, jobIDs []string, creatorID string) ([]models.Proposal, error)
	ListProposalsByCreator(ctx context.Context, creatorID string) ([]models.CreatorProposal, error)
	AcceptProposal(ctx context.Context, proposalID, jobID string) (*models.Proposal, error)
	RejectProposal(ctx context.Context, proposalID string) (*models.Proposal, error)
}

// PostgresProposalRepository - реализация ProposalRepository для базы данных.
type PostgresProposalRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProposalRepository создает новый экземпляр PostgresProposalRepository.
func NewPostgresProposalRepository(db *pgxpool.Pool) *PostgresProposalRepository {
	return &PostgresProposalRepository{DB: db}
}

const proposalColumns = `id, job_id, creator_id, price, description, status, created_at`

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var proposal models.Proposal
	err := row.Scan(
		&proposal.ID,
		&proposal.JobID,
		&proposal.CreatorID,
		&proposal.Price,
		&proposal.Description,
		&proposal.Status,
		&proposal.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &proposal, nil
}

// CreateProposal создает предложение, если работа все еще опубликована.
func (r *PostgresProposalRepository) CreateProposal(ctx context.Context, proposal models.Proposal) (*models.Proposal, error) {
	newProposal := proposal
	newProposal.ID = uuid.New().String()
	newProposal.Status = models.PendingProposal
	newProposal.CreatedAt = time.Now().UTC()

	insertQuery := `
		INSERT INTO proposals (id, job_id, creator_id, price, description, status, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE EXISTS (SELECT 1 FROM jobs WHERE id = $2 AND status = 'published')`
	tag, err := r.DB.Exec(
		ctx,
		insertQuery,
		newProposal.ID,
		newProposal.JobID,
		newProposal.CreatorID,
		newProposal.Price,
		newProposal.Description,
		newProposal.Status,
		newProposal.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConflict
	}
	return &newProposal, nil
}

// GetProposalByID возвращает предложение по ID.
func (r *PostgresProposalRepository) GetProposalByID(ctx context.Context, proposalID string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`
	return scanProposal(r.DB.QueryRow(ctx, query, proposalID))
}

// ListProposalsByJobs возвращает предложения по набору работ вместе с именем исполнителя.
// Непустой creatorID оставляет только предложения этого исполнителя.
func (r *PostgresProposalRepository) ListProposalsByJobs(ctx context.Context, jobIDs []string, creatorID string) ([]models.Proposal, error) {
	if len(jobIDs) == 0 {
		return []models.Proposal{}, nil
	}

	query := `
		SELECT p.id, p.job_id, p.creator_id, p.price, p.description, p.status, p.created_at, pr.full_name
		FROM proposals p
		JOIN profiles pr ON pr.id = p.creator_id
		WHERE p.job_id::text = ANY($1) AND ($2 = '' OR p.creator_id::text = $2)
		ORDER BY p.created_at DESC, p.id`
	rows, err := r.DB.Query(ctx, query, pq.Array(jobIDs), creatorID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.JobID, &p.CreatorID, &p.Price, &p.Description, &p.Status, &p.CreatedAt, &p.CreatorName); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// ListProposalsByCreator возвращает все предложения исполнителя со статусами их работ.
func (r *PostgresProposalRepository) ListProposalsByCreator(ctx context.Context, creatorID string) ([]models.CreatorProposal, error) {
	query := `
		SELECT p.id, p.job_id, p.creator_id, p.price, p.description, p.status, p.created_at, j.status
		FROM proposals p
		JOIN jobs j ON j.id = p.job_id
		WHERE p.creator_id = $1
		ORDER BY p.created_at DESC, p.id`
	rows, err := r.DB.Query(ctx, query, creatorID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	proposals := []models.CreatorProposal{}
	for rows.Next() {
		var p models.CreatorProposal
		if err := rows.Scan(&p.ID, &p.JobID, &p.CreatorID, &p.Price, &p.Description, &p.Status, &p.CreatedAt, &p.JobStatus); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// AcceptProposal принимает предложение и переводит работу в работу одной процедурой.
func (r *PostgresProposalRepository) AcceptProposal(ctx context.Context, proposalID, jobID string) (*models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM accept_proposal_and_start_job($1, $2)`
	return scanProposal(r.DB.QueryRow(ctx, query, proposalID, jobID))
}

// RejectProposal отклоняет предложение, если оно еще ожидает решения.
func (r *PostgresProposalRepository) RejectProposal(ctx context.Context, proposalID string) (*models.Proposal, error) {
	query := `
		UPDATE proposals SET status = 'rejected'
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + proposalColumns
	proposal, err := scanProposal(r.DB.QueryRow(ctx, query, proposalID))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConflict
	}
	return proposal, err
}
