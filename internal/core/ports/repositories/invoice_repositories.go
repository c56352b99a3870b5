package repositories

import (
	"context"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
)

// InvoiceReader defines read operations for invoice records
type InvoiceReader interface {
	// FindInvoiceByNumber returns apperrors.ErrNotFound when no record carries the number.
	FindInvoiceByNumber(ctx context.Context, invoiceNumber string) (*domain.InvoiceRecord, error)

	// FindInvoiceByID retrieves a record by its identifier.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.InvoiceRecord, error)

	// ListInvoices returns records newest first, along with the token for the next page (nil on the last page).
	ListInvoices(ctx context.Context, limit int, nextToken *string) ([]domain.InvoiceRecord, *string, error)
}

// InvoiceWriter defines write operations for invoice records
type InvoiceWriter interface {
	// SaveInvoice inserts a record. A record with the same invoice number yields apperrors.ErrDuplicate.
	SaveInvoice(ctx context.Context, invoice domain.InvoiceRecord) error

	// UpdateInvoiceDetails rewrites the reviewed fields, including the invoice number.
	// Moving onto a number held by another record yields apperrors.ErrDuplicate.
	UpdateInvoiceDetails(ctx context.Context, invoice domain.InvoiceRecord) error

	// UpdateInvoiceStatus moves a record to a new status, optionally recording the ledger entry id.
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, ledgerEntryID *string, updatedBy string) error

	// DeleteInvoice releases the invoice number held by the record.
	DeleteInvoice(ctx context.Context, invoiceID string) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
