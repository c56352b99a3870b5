package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/core/services"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
	"github.com/SscSPs/invoice_pipeline/internal/platform/metrics"
	"github.com/SscSPs/invoice_pipeline/internal/repositories/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewCandidate(number string) domain.InvoiceCandidate {
	return domain.InvoiceCandidate{
		Vendor:        "Acme",
		Amount:        decimal.NewFromInt(1500),
		InvoiceDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		InvoiceNumber: number,
	}
}

func TestReviewGate_RequestReviewIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	gate := services.NewReviewGate(memory.NewReviewRepository(), m)

	require.NoError(t, gate.RequestReview(ctx, "t1", reviewCandidate("INV-1"), "over threshold"))
	require.NoError(t, gate.RequestReview(ctx, "t1", reviewCandidate("INV-1"), "over threshold"))

	page, err := gate.ListPendingReviews(ctx, dto.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "over threshold", page.Reviews[0].RuleReason)
	assert.Equal(t, page.Reviews[0].Candidate, page.Reviews[0].Suggested)
	expected := `
# HELP pipeline_reviews_pending Review requests opened by this process and not yet decided or cancelled.
# TYPE pipeline_reviews_pending gauge
pipeline_reviews_pending 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), metrics.MetricReviewsPending))
}

func TestReviewGate_CloseOnce(t *testing.T) {
	ctx := context.Background()
	gate := services.NewReviewGate(memory.NewReviewRepository(), nil)
	require.NoError(t, gate.RequestReview(ctx, "t1", reviewCandidate("INV-1"), "over threshold"))

	require.NoError(t, gate.RecordDecision(ctx, "t1", domain.ReviewDecision{Approved: true, Reviewer: "bob", Comment: "ok"}))
	err := gate.RecordCancellation(ctx, "t1", "carol", "too late")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	review, err := gate.GetReview(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewApproved, review.Status)
	assert.Equal(t, "bob", review.DecidedBy)
	require.NotNil(t, review.DecidedAt)

	page, err := gate.ListPendingReviews(ctx, dto.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Reviews)
}

func TestReviewGate_UnknownTask(t *testing.T) {
	gate := services.NewReviewGate(memory.NewReviewRepository(), nil)

	err := gate.RecordDecision(context.Background(), "missing", domain.ReviewDecision{Approved: false})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
