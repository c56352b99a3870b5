package services

import (
	"context"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
)

// ReviewReaderSvc defines read operations for review requests
type ReviewReaderSvc interface {
	GetReview(ctx context.Context, taskID string) (*domain.ReviewRequest, error)
	ListPendingReviews(ctx context.Context, params dto.ListParams) (*dto.ListReviewsResponse, error)
}

// ReviewGateSvc is the channel to human reviewers. Opening a request never blocks on the reviewer;
// the answer arrives later through the pipeline's resumption entry points.
type ReviewGateSvc interface {
	ReviewReaderSvc

	// RequestReview presents the candidate as a pre-filled suggestion. Re-opening an existing request is a no-op.
	RequestReview(ctx context.Context, taskID string, candidate domain.InvoiceCandidate, ruleReason string) error

	// RecordDecision closes the request with the reviewer's decision.
	RecordDecision(ctx context.Context, taskID string, decision domain.ReviewDecision) error

	// RecordCancellation closes the request without a decision.
	RecordCancellation(ctx context.Context, taskID string, cancelledBy string, reason string) error
}
