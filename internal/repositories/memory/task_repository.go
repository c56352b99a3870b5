package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
)

// TaskRepository is an in-process checkpoint store with optimistic versioning.
type TaskRepository struct {
	store *Store[string, domain.PipelineTask]
}

// NewTaskRepository creates an empty checkpoint store.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		store: NewStore[string, domain.PipelineTask](func(t *domain.PipelineTask) string { return t.TaskID }),
	}
}

var _ portsrepo.TaskRepositoryFacade = (*TaskRepository)(nil)

func (r *TaskRepository) SaveTask(_ context.Context, task *domain.PipelineTask) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.records[task.TaskID]; ok {
		return fmt.Errorf("%w: task %s already exists", apperrors.ErrDuplicate, task.TaskID)
	}
	task.Version = 1
	return r.store.save(task)
}

func (r *TaskRepository) UpdateTask(_ context.Context, task *domain.PipelineTask) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok, err := r.store.load(task.TaskID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Version != task.Version {
		return fmt.Errorf("%w: task %s was modified concurrently (version %d, expected %d)",
			apperrors.ErrConflict, task.TaskID, current.Version, task.Version)
	}

	task.Version++
	if err := r.store.save(task); err != nil {
		task.Version--
		return err
	}
	return nil
}

func (r *TaskRepository) FindTaskByID(_ context.Context, taskID string) (*domain.PipelineTask, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	task, ok, err := r.store.load(taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return task, nil
}
