package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_pipeline/internal/utils/pagination"
)

// ReviewRepository keeps review requests in process.
type ReviewRepository struct {
	store *Store[string, domain.ReviewRequest]
}

// NewReviewRepository creates an empty review request store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		store: NewStore[string, domain.ReviewRequest](func(r *domain.ReviewRequest) string { return r.TaskID }),
	}
}

var _ portsrepo.ReviewRepositoryFacade = (*ReviewRepository)(nil)

func (r *ReviewRepository) SaveReviewRequest(_ context.Context, request domain.ReviewRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.records[request.TaskID]; ok {
		return fmt.Errorf("%w: review request for task %s already exists", apperrors.ErrDuplicate, request.TaskID)
	}
	return r.store.save(&request)
}

func (r *ReviewRepository) FindReviewRequest(_ context.Context, taskID string) (*domain.ReviewRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	request, ok, err := r.store.load(taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return request, nil
}

func (r *ReviewRepository) ListPendingReviews(_ context.Context, limit int, nextToken *string) ([]domain.ReviewRequest, *string, error) {
	r.store.mu.RLock()
	all, err := r.store.all()
	r.store.mu.RUnlock()
	if err != nil {
		return nil, nil, err
	}

	pending := make([]domain.ReviewRequest, 0, len(all))
	for _, request := range all {
		if request.Status == domain.ReviewPending {
			pending = append(pending, request)
		}
	}
	// oldest first, task id breaks ties
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].RequestedAt.Equal(pending[j].RequestedAt) {
			return pending[i].RequestedAt.Before(pending[j].RequestedAt)
		}
		return pending[i].TaskID < pending[j].TaskID
	})

	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start := len(pending)
		for i, request := range pending {
			if request.RequestedAt.After(afterTime) || (request.RequestedAt.Equal(afterTime) && request.TaskID > afterID) {
				start = i
				break
			}
		}
		pending = pending[start:]
	}

	return page(pending, limit, func(request domain.ReviewRequest) (time.Time, string) {
		return request.RequestedAt, request.TaskID
	})
}

func (r *ReviewRepository) CloseReviewRequest(_ context.Context, taskID string, status domain.ReviewStatus, decidedBy, comment string, decidedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	request, ok, err := r.store.load(taskID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotFound
	}
	if request.Status != domain.ReviewPending {
		return fmt.Errorf("%w: review for task %s is already %s", apperrors.ErrConflict, taskID, request.Status)
	}

	request.Status = status
	request.DecidedAt = &decidedAt
	request.DecidedBy = decidedBy
	request.Comment = comment
	return r.store.save(request)
}
