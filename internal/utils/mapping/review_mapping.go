package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/models"
)

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToModelReviewRequest converts a domain ReviewRequest to a model ReviewRequest
func ToModelReviewRequest(d domain.ReviewRequest) (models.ReviewRequest, error) {
	candidate, err := json.Marshal(d.Candidate)
	if err != nil {
		return models.ReviewRequest{}, fmt.Errorf("encode candidate: %w", err)
	}
	suggested, err := json.Marshal(d.Suggested)
	if err != nil {
		return models.ReviewRequest{}, fmt.Errorf("encode suggestion: %w", err)
	}
	return models.ReviewRequest{
		TaskID:      d.TaskID,
		Candidate:   candidate,
		Suggested:   suggested,
		RuleReason:  d.RuleReason,
		Status:      string(d.Status),
		RequestedAt: d.RequestedAt,
		DecidedAt:   d.DecidedAt,
		DecidedBy:   nullableString(d.DecidedBy),
		Comment:     nullableString(d.Comment),
	}, nil
}

// ToDomainReviewRequest converts a model ReviewRequest to a domain ReviewRequest
func ToDomainReviewRequest(m models.ReviewRequest) (*domain.ReviewRequest, error) {
	d := &domain.ReviewRequest{
		TaskID:      m.TaskID,
		RuleReason:  m.RuleReason,
		Status:      domain.ReviewStatus(m.Status),
		RequestedAt: m.RequestedAt.UTC(),
		DecidedAt:   m.DecidedAt,
		DecidedBy:   derefString(m.DecidedBy),
		Comment:     derefString(m.Comment),
	}
	if err := json.Unmarshal(m.Candidate, &d.Candidate); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}
	if err := json.Unmarshal(m.Suggested, &d.Suggested); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	return d, nil
}
