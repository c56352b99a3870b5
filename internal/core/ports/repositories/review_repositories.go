package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
)

// ReviewReader defines read operations for review requests
type ReviewReader interface {
	FindReviewRequest(ctx context.Context, taskID string) (*domain.ReviewRequest, error)

	// ListPendingReviews returns pending requests oldest first, along with the next page token.
	ListPendingReviews(ctx context.Context, limit int, nextToken *string) ([]domain.ReviewRequest, *string, error)
}

// ReviewWriter defines write operations for review requests
type ReviewWriter interface {
	// SaveReviewRequest yields apperrors.ErrDuplicate when the task already has a request.
	SaveReviewRequest(ctx context.Context, request domain.ReviewRequest) error

	// CloseReviewRequest moves a pending request to its final status.
	// A request that is no longer pending yields apperrors.ErrConflict.
	CloseReviewRequest(ctx context.Context, taskID string, status domain.ReviewStatus, decidedBy, comment string, decidedAt time.Time) error
}

// ReviewRepositoryFacade combines all review repository interfaces
type ReviewRepositoryFacade interface {
	ReviewReader
	ReviewWriter
}
