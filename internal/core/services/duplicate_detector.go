package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_pipeline/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
)

type duplicateDetector struct {
	BaseService
	invoiceRepo portsrepo.InvoiceReader
}

// NewDuplicateDetector creates a detector backed by the invoice store.
func NewDuplicateDetector(invoiceRepo portsrepo.InvoiceReader) portssvc.DuplicateDetectorSvc {
	return &duplicateDetector{invoiceRepo: invoiceRepo}
}

var _ portssvc.DuplicateDetectorSvc = (*duplicateDetector)(nil)

// CheckDuplicate performs a single lookup by invoice number.
func (d *duplicateDetector) CheckDuplicate(ctx context.Context, invoiceNumber string) (domain.DuplicateVerdict, error) {
	existing, err := d.invoiceRepo.FindInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.DuplicateVerdict{
				IsDuplicate: false,
				Reason:      fmt.Sprintf("No invoice with number %s has been recorded", invoiceNumber),
			}, nil
		}
		d.LogError(ctx, err, "Duplicate check lookup failed", slog.String("invoice_number", invoiceNumber))
		return domain.DuplicateVerdict{}, fmt.Errorf("duplicate check for invoice %s: %w", invoiceNumber, err)
	}

	return domain.DuplicateVerdict{
		IsDuplicate: true,
		Reason: fmt.Sprintf("Invoice number %s was already submitted on %s (status %s)",
			invoiceNumber, existing.CreatedAt.UTC().Format("2006-01-02"), existing.Status),
	}, nil
}
