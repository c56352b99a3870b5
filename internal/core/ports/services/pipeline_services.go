package services

import (
	"context"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/dto"
)

// PipelineReaderSvc defines read operations over pipeline tasks and invoice records
type PipelineReaderSvc interface {
	// GetTask returns the latest checkpoint of a task.
	GetTask(ctx context.Context, taskID string) (*domain.PipelineTask, error)

	// ListInvoices returns a page of invoice records.
	ListInvoices(ctx context.Context, params dto.ListParams) (*dto.ListInvoicesResponse, error)
}

// PipelineWriterSvc defines the operations that drive a task through the state machine
type PipelineWriterSvc interface {
	// Submit runs a new task until it reaches a terminal state or suspends for human review.
	Submit(ctx context.Context, upload domain.Upload, submittedBy string) (*domain.PipelineTask, error)

	// Resume continues a task suspended for review with the reviewer's decision.
	Resume(ctx context.Context, taskID string, decision domain.ReviewDecision) (*domain.PipelineTask, error)

	// CancelReview terminates a task suspended for review.
	CancelReview(ctx context.Context, taskID string, reason string, cancelledBy string) (*domain.PipelineTask, error)

	// ReconcilePosting settles a task whose posting failed after the ledger issued an entry id.
	ReconcilePosting(ctx context.Context, taskID string, requestedBy string) (*domain.PipelineTask, error)
}

// PipelineSvcFacade combines all pipeline service interfaces
type PipelineSvcFacade interface {
	PipelineReaderSvc
	PipelineWriterSvc
}
