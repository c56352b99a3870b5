package domain

import "time"

// ReviewStatus is the lifecycle of a review request.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "PENDING"
	ReviewApproved  ReviewStatus = "APPROVED"
	ReviewRejected  ReviewStatus = "REJECTED"
	ReviewCancelled ReviewStatus = "CANCELLED"
)

// ReviewRequest is what a reviewer sees: the candidate and the pre-filled suggestion.
type ReviewRequest struct {
	TaskID      string           `json:"taskID"`
	Candidate   InvoiceCandidate `json:"candidate"`
	Suggested   InvoiceCandidate `json:"suggested"`
	RuleReason  string           `json:"ruleReason"`
	Status      ReviewStatus     `json:"status"`
	RequestedAt time.Time        `json:"requestedAt"`
	DecidedAt   *time.Time       `json:"decidedAt,omitempty"`
	DecidedBy   string           `json:"decidedBy,omitempty"`
	Comment     string           `json:"comment,omitempty"`
}

// ReviewDecision is the reviewer's answer.
// A nil Invoice confirms the candidate verbatim; otherwise Invoice replaces every field of the candidate.
type ReviewDecision struct {
	Approved bool              `json:"approved"`
	Invoice  *InvoiceCandidate `json:"invoice,omitempty"`
	Reviewer string            `json:"reviewer"`
	Comment  string            `json:"comment"`
}

// Apply produces the reviewed invoice for the candidate. The source file reference is kept
// when the replacement does not carry one. A rejection ignores any replacement.
func (d ReviewDecision) Apply(candidate InvoiceCandidate, at time.Time) (ReviewedInvoice, error) {
	final := candidate
	if d.Approved && d.Invoice != nil {
		replacement := *d.Invoice
		if replacement.SourceFile.Key == "" {
			replacement.SourceFile = candidate.SourceFile
		}
		normalised, err := NewInvoiceCandidate(replacement.Vendor, replacement.Amount, replacement.Description,
			replacement.InvoiceDate, replacement.InvoiceNumber, replacement.SourceFile)
		if err != nil {
			return ReviewedInvoice{}, err
		}
		final = normalised
	}
	return ReviewedInvoice{
		InvoiceCandidate: final,
		Approved:         d.Approved,
		ReviewedBy:       d.Reviewer,
		ReviewedAt:       at.UTC(),
	}, nil
}
