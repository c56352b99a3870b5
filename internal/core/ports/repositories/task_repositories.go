package repositories

import (
	"context"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
)

// TaskReader defines read operations for pipeline checkpoints
type TaskReader interface {
	FindTaskByID(ctx context.Context, taskID string) (*domain.PipelineTask, error)
}

// TaskWriter defines write operations for pipeline checkpoints
type TaskWriter interface {
	// SaveTask inserts the first checkpoint of a task and sets its version to 1.
	SaveTask(ctx context.Context, task *domain.PipelineTask) error

	// UpdateTask overwrites the checkpoint when the stored version matches task.Version,
	// then bumps task.Version. A stale version yields apperrors.ErrConflict.
	UpdateTask(ctx context.Context, task *domain.PipelineTask) error
}

// TaskRepositoryFacade combines all checkpoint repository interfaces
type TaskRepositoryFacade interface {
	TaskReader
	TaskWriter
}
