package dto

import (
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
)

// ReviewDecisionRequest is the reviewer's answer to a pending review.
// Invoice, when present on an approval, replaces the candidate as a whole. It is validated by the
// handler only for approvals, so a rejection is never blocked by a half-edited form.
type ReviewDecisionRequest struct {
	Approved *bool           `json:"approved" binding:"required"`
	Invoice  *InvoicePayload `json:"invoice,omitempty" binding:"-"`
	Comment  string          `json:"comment" binding:"max=1000"`
}

// ToDomain converts the request into a domain.ReviewDecision.
func (r ReviewDecisionRequest) ToDomain(reviewer string) domain.ReviewDecision {
	decision := domain.ReviewDecision{
		Approved: *r.Approved,
		Reviewer: reviewer,
		Comment:  r.Comment,
	}
	if *r.Approved && r.Invoice != nil {
		candidate := r.Invoice.ToCandidate()
		decision.Invoice = &candidate
	}
	return decision
}

// CancelReviewRequest cancels a pending review.
type CancelReviewRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReviewResponse defines the data returned for a review request.
type ReviewResponse struct {
	TaskID      string                  `json:"taskID"`
	Candidate   domain.InvoiceCandidate `json:"candidate"`
	Suggested   domain.InvoiceCandidate `json:"suggested"`
	RuleReason  string                  `json:"ruleReason"`
	Status      string                  `json:"status"`
	RequestedAt time.Time               `json:"requestedAt"`
	DecidedAt   *time.Time              `json:"decidedAt,omitempty"`
	DecidedBy   string                  `json:"decidedBy,omitempty"`
	Comment     string                  `json:"comment,omitempty"`
}

// ListReviewsResponse wraps a page of review requests.
type ListReviewsResponse struct {
	Reviews   []ReviewResponse `json:"reviews"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// ToReviewResponse converts a domain.ReviewRequest to ReviewResponse DTO.
func ToReviewResponse(r *domain.ReviewRequest) ReviewResponse {
	return ReviewResponse{
		TaskID:      r.TaskID,
		Candidate:   r.Candidate,
		Suggested:   r.Suggested,
		RuleReason:  r.RuleReason,
		Status:      string(r.Status),
		RequestedAt: r.RequestedAt,
		DecidedAt:   r.DecidedAt,
		DecidedBy:   r.DecidedBy,
		Comment:     r.Comment,
	}
}

// ToListReviewsResponse converts a page of review requests.
func ToListReviewsResponse(requests []domain.ReviewRequest, nextToken *string) ListReviewsResponse {
	list := make([]ReviewResponse, len(requests))
	for i := range requests {
		list[i] = ToReviewResponse(&requests[i])
	}
	return ListReviewsResponse{Reviews: list, NextToken: nextToken}
}
