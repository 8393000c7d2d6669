package repository

import (
	"context"
	"time"

	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// JobRepository - интерфейс для работы с работами.
type JobRepository interface {
	CreateJob(ctx context.Context, job models.Job) (*models.Job, error)
	GetJobByID(ctx context.Context, jobID string) (*models.Job, error)
	ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	DeleteJob(ctx context.Context, jobID, clientID string) error
}

// PostgresJobRepository - реализация JobRepository для базы данных.
type PostgresJobRepository struct {
	DB *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresJobRepository создает новый экземпляр PostgresJobRepository.
func NewPostgresJobRepository(db *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{
		DB: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const jobColumns = `id, client_id, title, description, budget, category, status, created_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(
		&job.ID,
		&job.ClientID,
		&job.Title,
		&job.Description,
		&job.Budget,
		&job.Category,
		&job.Status,
		&job.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &job, nil
}

// CreateJob создает новую работу.
func (r *PostgresJobRepository) CreateJob(ctx context.Context, job models.Job) (*models.Job, error) {
	newJob := job
	newJob.ID = uuid.New().String()
	newJob.CreatedAt = time.Now().UTC()

	insertQuery := `INSERT INTO jobs (id, client_id, title, description, budget, category, status, created_at)
                    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newJob.ID,
		newJob.ClientID,
		newJob.Title,
		newJob.Description,
		newJob.Budget,
		newJob.Category,
		newJob.Status,
		newJob.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &newJob, nil
}

// GetJobByID возвращает работу по ID.
func (r *PostgresJobRepository) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(r.DB.QueryRow(ctx, query, jobID))
}

// ListJobs возвращает работы по фильтру, новые первыми.
func (r *PostgresJobRepository) ListJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	builder := r.sb.
		Select(jobColumns).
		From("jobs").
		OrderBy("created_at DESC", "id")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.ClientID != "" {
		builder = builder.Where(squirrel.Eq{"client_id": filter.ClientID})
	}
	if filter.CreatorID != "" {
		builder = builder.Where("EXISTS (SELECT 1 FROM proposals p WHERE p.job_id = jobs.id AND p.creator_id = ?)", filter.CreatorID)
	}
	if len(filter.Categories) > 0 {
		builder = builder.Where("category = ANY(?)", pq.Array(filter.Categories))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// DeleteJob удаляет работу, только если она принадлежит заказчику.
func (r *PostgresJobRepository) DeleteJob(ctx context.Context, jobID, clientID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM jobs WHERE id = $1 AND client_id = $2`, jobID, clientID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
