package dto

import (
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
)

// TaskResponse is the externally visible checkpoint of a pipeline task.
type TaskResponse struct {
	TaskID        string                      `json:"taskID"`
	State         string                      `json:"state"`
	Outcome       string                      `json:"outcome,omitempty"`
	Reason        string                      `json:"reason,omitempty"`
	Source        domain.FileRef              `json:"source"`
	Candidate     *domain.InvoiceCandidate    `json:"candidate,omitempty"`
	Decision      *domain.ApprovalDecision    `json:"decision,omitempty"`
	Reviewed      *domain.ReviewedInvoice     `json:"reviewed,omitempty"`
	Entry         *domain.JournalEntry        `json:"journalEntry,omitempty"`
	Posting       *domain.LedgerPostingResult `json:"posting,omitempty"`
	InvoiceID     string                      `json:"invoiceID,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	CreatedBy     string                      `json:"createdBy"`
	LastUpdatedAt time.Time                   `json:"lastUpdatedAt"`
	Version       int64                       `json:"version"`
}

// ToTaskResponse converts a domain.PipelineTask to TaskResponse DTO.
func ToTaskResponse(t *domain.PipelineTask) TaskResponse {
	return TaskResponse{
		TaskID:        t.TaskID,
		State:         string(t.State),
		Outcome:       string(t.Outcome),
		Reason:        t.Reason,
		Source:        t.Source,
		Candidate:     t.Candidate,
		Decision:      t.Decision,
		Reviewed:      t.Reviewed,
		Entry:         t.Entry,
		Posting:       t.Posting,
		InvoiceID:     t.InvoiceID,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		LastUpdatedAt: t.LastUpdatedAt,
		Version:       t.Version,
	}
}
