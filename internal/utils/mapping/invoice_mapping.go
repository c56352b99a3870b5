package mapping

import (
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/models"
)

// ToModelInvoice converts a domain InvoiceRecord to a model Invoice
func ToModelInvoice(d domain.InvoiceRecord) models.Invoice {
	return models.Invoice{
		InvoiceID:     d.InvoiceID,
		InvoiceNumber: d.InvoiceNumber,
		Vendor:        d.Vendor,
		Amount:        d.Amount,
		Description:   d.Description,
		InvoiceDate:   d.InvoiceDate,
		Status:        string(d.Status),
		TaskID:        d.TaskID,
		LedgerEntryID: d.LedgerEntryID,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain InvoiceRecord
func ToDomainInvoice(m models.Invoice) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		Vendor:        m.Vendor,
		Amount:        m.Amount,
		Description:   m.Description,
		InvoiceDate:   m.InvoiceDate.UTC(),
		Status:        domain.InvoiceStatus(m.Status),
		TaskID:        m.TaskID,
		LedgerEntryID: m.LedgerEntryID,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInvoiceSlice converts a slice of model Invoices to a slice of domain InvoiceRecords
func ToDomainInvoiceSlice(ms []models.Invoice) []domain.InvoiceRecord {
	ds := make([]domain.InvoiceRecord, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoice(m)
	}
	return ds
}
