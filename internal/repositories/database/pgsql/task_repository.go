package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_pipeline/internal/models"
	"github.com/SscSPs/invoice_pipeline/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTaskRepository struct {
	BaseRepository
}

// newPgxTaskRepository creates a new repository for pipeline checkpoints.
func newPgxTaskRepository(pool *pgxpool.Pool) *PgxTaskRepository {
	return &PgxTaskRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TaskRepositoryFacade = (*PgxTaskRepository)(nil)

func (r *PgxTaskRepository) SaveTask(ctx context.Context, task *domain.PipelineTask) error {
	m, err := mapping.ToModelPipelineTask(*task)
	if err != nil {
		return fmt.Errorf("failed to encode task %s: %w", task.TaskID, err)
	}

	query := `
		INSERT INTO pipeline_tasks (task_id, state, outcome, reason, source, candidate, decision, reviewed, entry, posting,
			invoice_id, created_at, created_by, last_updated_at, last_updated_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.TaskID, m.State, m.Outcome, m.Reason,
		m.Source, m.Candidate, m.Decision, m.Reviewed, m.Entry, m.Posting,
		m.InvoiceID, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return duplicateOr(err,
			fmt.Sprintf("task %s already exists", m.TaskID),
			fmt.Sprintf("failed to save task %s", m.TaskID))
	}
	task.Version = 1
	return nil
}

// UpdateTask is a compare-and-swap on the version column.
func (r *PgxTaskRepository) UpdateTask(ctx context.Context, task *domain.PipelineTask) error {
	m, err := mapping.ToModelPipelineTask(*task)
	if err != nil {
		return fmt.Errorf("failed to encode task %s: %w", task.TaskID, err)
	}

	query := `
		UPDATE pipeline_tasks
		SET state = $3, outcome = $4, reason = $5, source = $6, candidate = $7, decision = $8, reviewed = $9,
			entry = $10, posting = $11, invoice_id = $12, last_updated_at = $13, last_updated_by = $14,
			version = version + 1
		WHERE task_id = $1 AND version = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.TaskID, m.Version,
		m.State, m.Outcome, m.Reason,
		m.Source, m.Candidate, m.Decision, m.Reviewed, m.Entry, m.Posting,
		m.InvoiceID, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", m.TaskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var stored int64
		err := r.Pool.QueryRow(ctx, `SELECT version FROM pipeline_tasks WHERE task_id = $1;`, m.TaskID).Scan(&stored)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read version of task %s: %w", m.TaskID, err)
		}
		return fmt.Errorf("%w: task %s was modified concurrently (version %d, expected %d)",
			apperrors.ErrConflict, m.TaskID, stored, m.Version)
	}

	task.Version++
	return nil
}

func (r *PgxTaskRepository) FindTaskByID(ctx context.Context, taskID string) (*domain.PipelineTask, error) {
	query := `
		SELECT task_id, state, outcome, reason, source, candidate, decision, reviewed, entry, posting,
			invoice_id, created_at, created_by, last_updated_at, last_updated_by, version
		FROM pipeline_tasks
		WHERE task_id = $1;
	`
	var m models.PipelineTask
	err := r.Pool.QueryRow(ctx, query, taskID).Scan(
		&m.TaskID,
		&m.State,
		&m.Outcome,
		&m.Reason,
		&m.Source,
		&m.Candidate,
		&m.Decision,
		&m.Reviewed,
		&m.Entry,
		&m.Posting,
		&m.InvoiceID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task %s: %w", taskID, err)
	}

	task, err := mapping.ToDomainPipelineTask(m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode task %s: %w", taskID, err)
	}
	return task, nil
}
