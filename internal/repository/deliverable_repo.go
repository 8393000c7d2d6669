package repository

import (
	"context"
	"errors"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// DeliverableRepository - интерфейс для работы с результатами.
type DeliverableRepository interface {
	SubmitDeliverable(ctx context.Context, submission models.DeliverableSubmission) (*models.Deliverable, error)
	GetDeliverableByID(ctx context.Context, deliverableID string) (*models.Deliverable, error)
	GetLatestDeliverable(ctx context.Context, proposalID string) (*models.Deliverable, error)
	ListDeliverablesByProposals(ctx context.Context, proposalIDs []string) ([]models.Deliverable, error)
	ReviewDeliverable(ctx context.Context, deliverableID string, status models.DeliverableStatus, notes *string) (*models.Deliverable, error)
}

// PostgresDeliverableRepository - реализация DeliverableRepository для базы данных.
type PostgresDeliverableRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresDeliverableRepository создает новый экземпляр PostgresDeliverableRepository.
func NewPostgresDeliverableRepository(db *pgxpool.Pool) *PostgresDeliverableRepository {
	return &PostgresDeliverableRepository{DB: db}
}

const deliverableColumns = `id, proposal_id, job_id, content, file_path, external_link, status, revision_notes, created_at`

func scanDeliverable(row pgx.Row) (*models.Deliverable, error) {
	var d models.Deliverable
	err := row.Scan(
		&d.ID,
		&d.ProposalID,
		&d.JobID,
		&d.Content,
		&d.FilePath,
		&d.ExternalLink,
		&d.Status,
		&d.RevisionNotes,
		&d.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// SubmitDeliverable сохраняет результат и завершает работу одной процедурой.
func (r *PostgresDeliverableRepository) SubmitDeliverable(ctx context.Context, submission models.DeliverableSubmission) (*models.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM submit_deliverable_and_complete_job($1, $2, $3, $4, $5)`
	return scanDeliverable(r.DB.QueryRow(
		ctx,
		query,
		submission.ProposalID,
		submission.JobID,
		submission.Content,
		submission.FilePath,
		submission.ExternalLink))
}

// GetDeliverableByID возвращает результат по ID.
func (r *PostgresDeliverableRepository) GetDeliverableByID(ctx context.Context, deliverableID string) (*models.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE id = $1`
	return scanDeliverable(r.DB.QueryRow(ctx, query, deliverableID))
}

// GetLatestDeliverable возвращает последний сданный по предложению результат.
func (r *PostgresDeliverableRepository) GetLatestDeliverable(ctx context.Context, proposalID string) (*models.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE proposal_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanDeliverable(r.DB.QueryRow(ctx, query, proposalID))
}

// ListDeliverablesByProposals возвращает результаты по набору предложений, новые первыми.
func (r *PostgresDeliverableRepository) ListDeliverablesByProposals(ctx context.Context, proposalIDs []string) ([]models.Deliverable, error) {
	if len(proposalIDs) == 0 {
		return []models.Deliverable{}, nil
	}

	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE proposal_id::text = ANY($1) ORDER BY created_at DESC, id`
	rows, err := r.DB.Query(ctx, query, pq.Array(proposalIDs))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	deliverables := []models.Deliverable{}
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, err
		}
		deliverables = append(deliverables, *d)
	}
	return deliverables, rows.Err()
}

// ReviewDeliverable фиксирует решение заказчика, если результат еще ожидает проверки.
func (r *PostgresDeliverableRepository) ReviewDeliverable(ctx context.Context, deliverableID string, status models.DeliverableStatus, notes *string) (*models.Deliverable, error) {
	query := `
		UPDATE deliverables SET status = $2, revision_notes = $3
		WHERE id = $1 AND status = 'pending_review'
		RETURNING ` + deliverableColumns
	d, err := scanDeliverable(r.DB.QueryRow(ctx, query, deliverableID, status, notes))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrConflict
	}
	return d, err
}
