package services

import (
	"context"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
)

// Extractor turns a stored document into an invoice candidate.
// Unreadable documents fail with apperrors.ErrExtractionFailed.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string, source domain.FileRef) (*domain.InvoiceCandidate, error)
}

// DuplicateDetectorSvc reports whether an invoice number is already recorded. It has no side effects.
type DuplicateDetectorSvc interface {
	CheckDuplicate(ctx context.Context, invoiceNumber string) (domain.DuplicateVerdict, error)
}

// JournalBuilderSvc converts an approved invoice into a balanced journal entry.
// It is deterministic and fails with apperrors.ErrUnbalancedEntry rather than return an invalid entry.
type JournalBuilderSvc interface {
	Build(invoice domain.ReviewedInvoice) (*domain.JournalEntry, error)
}

// LedgerClient posts journal entries to the external system of record.
//
// A business rejection is returned as a result with Success=false. Transport failures are returned as
// *apperrors.PostingTransportError; the same entry may only be posted again when no entry id was issued.
type LedgerClient interface {
	PostJournalEntry(ctx context.Context, entry domain.JournalEntry) (*domain.LedgerPostingResult, error)
	GetEntryStatus(ctx context.Context, entryID string) (domain.LedgerEntryStatus, error)
}

// WorkbookExporter renders a journal entry as a spreadsheet and stores it.
type WorkbookExporter interface {
	Export(ctx context.Context, taskID string, entry domain.JournalEntry) (*domain.FileRef, error)
}

// ObjectStorage stores uploaded documents and exported workbooks.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (*domain.FileRef, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// UnlockFunc releases a claim lock.
type UnlockFunc func(ctx context.Context) error

// ClaimLocker serialises the duplicate check and the invoice claim for one invoice number.
type ClaimLocker interface {
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}
