package dto

import (
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListParams holds the paging query parameters shared by list endpoints.
type ListParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// InvoiceResponse defines the data returned for an invoice record.
type InvoiceResponse struct {
	InvoiceID     string          `json:"invoiceID"`
	InvoiceNumber string          `json:"invoiceNumber"`
	Vendor        string          `json:"vendor"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	Status        string          `json:"status"`
	TaskID        string          `json:"taskID"`
	LedgerEntryID *string         `json:"ledgerEntryID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ListInvoicesResponse wraps a page of invoice records.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToInvoiceResponse converts a domain.InvoiceRecord to InvoiceResponse DTO.
func ToInvoiceResponse(r *domain.InvoiceRecord) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:     r.InvoiceID,
		InvoiceNumber: r.InvoiceNumber,
		Vendor:        r.Vendor,
		Amount:        r.Amount,
		Description:   r.Description,
		InvoiceDate:   r.InvoiceDate,
		Status:        string(r.Status),
		TaskID:        r.TaskID,
		LedgerEntryID: r.LedgerEntryID,
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
		LastUpdatedAt: r.LastUpdatedAt,
		LastUpdatedBy: r.LastUpdatedBy,
	}
}

// ToListInvoicesResponse converts a page of records.
func ToListInvoicesResponse(records []domain.InvoiceRecord, nextToken *string) ListInvoicesResponse {
	list := make([]InvoiceResponse, len(records))
	for i := range records {
		list[i] = ToInvoiceResponse(&records[i])
	}
	return ListInvoicesResponse{Invoices: list, NextToken: nextToken}
}

// InvoicePayload is a complete invoice as typed by a reviewer.
type InvoicePayload struct {
	Vendor        string          `json:"vendor" binding:"required,max=255"`
	Amount        decimal.Decimal `json:"amount" binding:"decimal_gte0"`
	Description   string          `json:"description" binding:"max=1000"`
	InvoiceDate   time.Time       `json:"invoiceDate" binding:"required"`
	InvoiceNumber string          `json:"invoiceNumber" binding:"required,max=100"`
}

// ToCandidate converts the payload into the candidate shape the reviewer replaces.
func (p InvoicePayload) ToCandidate() domain.InvoiceCandidate {
	return domain.InvoiceCandidate{
		Vendor:        p.Vendor,
		Amount:        p.Amount,
		Description:   p.Description,
		InvoiceDate:   p.InvoiceDate,
		InvoiceNumber: p.InvoiceNumber,
	}
}
