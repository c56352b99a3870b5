package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
)

const defaultPageSize = 20

type reviewGate struct {
	BaseService
	reviewRepo portsrepo.ReviewRepositoryFacade
	metrics    *metrics.PipelineMetrics
	now        func() time.Time
}

// NewReviewGate creates the review channel backed by the review request store.
func NewReviewGate(reviewRepo portsrepo.ReviewRepositoryFacade, m *metrics.PipelineMetrics) portssvc.ReviewGateSvc {
	return &reviewGate{reviewRepo: reviewRepo, metrics: m, now: time.Now}
}

var _ portssvc.ReviewGateSvc = (*reviewGate)(nil)

func (g *reviewGate) RequestReview(ctx context.Context, taskID string, candidate domain.InvoiceCandidate, ruleReason string) error {
	request := domain.ReviewRequest{
		TaskID:      taskID,
		Candidate:   candidate,
		Suggested:   candidate,
		RuleReason:  ruleReason,
		Status:      domain.ReviewPending,
		RequestedAt: g.now().UTC(),
	}

	if err := g.reviewRepo.SaveReviewRequest(ctx, request); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			g.LogDebug(ctx, "Review request already open", slog.String("task_id", taskID))
			return nil
		}
		g.LogError(ctx, err, "Failed to open review request", slog.String("task_id", taskID))
		return fmt.Errorf("open review for task %s: %w", taskID, err)
	}

	g.metrics.ReviewOpened()
	g.LogInfo(ctx, "Review requested",
		slog.String("task_id", taskID),
		slog.String("invoice_number", candidate.InvoiceNumber))
	return nil
}

func (g *reviewGate) RecordDecision(ctx context.Context, taskID string, decision domain.ReviewDecision) error {
	status := domain.ReviewRejected
	if decision.Approved {
		status = domain.ReviewApproved
	}
	return g.close(ctx, taskID, status, decision.Reviewer, decision.Comment)
}

func (g *reviewGate) RecordCancellation(ctx context.Context, taskID string, cancelledBy string, reason string) error {
	return g.close(ctx, taskID, domain.ReviewCancelled, cancelledBy, reason)
}

func (g *reviewGate) close(ctx context.Context, taskID string, status domain.ReviewStatus, actor, comment string) error {
	if err := g.reviewRepo.CloseReviewRequest(ctx, taskID, status, actor, comment, g.now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) && !errors.Is(err, apperrors.ErrNotFound) {
			g.LogError(ctx, err, "Failed to close review request", slog.String("task_id", taskID))
		}
		return err
	}
	g.metrics.ReviewClosed()
	g.LogInfo(ctx, "Review closed", slog.String("task_id", taskID), slog.String("status", string(status)))
	return nil
}

func (g *reviewGate) GetReview(ctx context.Context, taskID string) (*domain.ReviewRequest, error) {
	return g.reviewRepo.FindReviewRequest(ctx, taskID)
}

func (g *reviewGate) ListPendingReviews(ctx context.Context, params dto.ListParams) (*dto.ListReviewsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	requests, nextToken, err := g.reviewRepo.ListPendingReviews(ctx, limit, params.NextToken)
	if err != nil {
		g.LogError(ctx, err, "Failed to list pending reviews")
		return nil, err
	}

	resp := dto.ToListReviewsResponse(requests, nextToken)
	return &resp, nil
}
