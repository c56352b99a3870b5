package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount        = errors.New("invoice amount must not be negative")
	ErrInvoiceNumberRequired = errors.New("invoice number is required")
	ErrVendorRequired        = errors.New("invoice vendor is required")
)

// FileRef points at a stored file (uploaded source document or exported workbook).
type FileRef struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Upload is a document submitted for processing.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// InvoiceCandidate is the typed result of extraction. Use NewInvoiceCandidate to build one.
type InvoiceCandidate struct {
	Vendor        string          `json:"vendor"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SourceFile    FileRef         `json:"sourceFile"`
}

// NewInvoiceCandidate validates and normalises the extracted fields.
func NewInvoiceCandidate(vendor string, amount decimal.Decimal, description string, invoiceDate time.Time, invoiceNumber string, source FileRef) (InvoiceCandidate, error) {
	vendor = strings.TrimSpace(vendor)
	invoiceNumber = strings.TrimSpace(invoiceNumber)

	if vendor == "" {
		return InvoiceCandidate{}, ErrVendorRequired
	}
	if invoiceNumber == "" {
		return InvoiceCandidate{}, ErrInvoiceNumberRequired
	}
	if amount.IsNegative() {
		return InvoiceCandidate{}, fmt.Errorf("%w: got %s", ErrNegativeAmount, amount.String())
	}

	return InvoiceCandidate{
		Vendor:        vendor,
		Amount:        amount,
		Description:   strings.TrimSpace(description),
		InvoiceDate:   invoiceDate.UTC(),
		InvoiceNumber: invoiceNumber,
		SourceFile:    source,
	}, nil
}

// Validate re-checks the construction rules, e.g. for candidates decoded from a checkpoint or a reviewer.
func (c InvoiceCandidate) Validate() error {
	_, err := NewInvoiceCandidate(c.Vendor, c.Amount, c.Description, c.InvoiceDate, c.InvoiceNumber, c.SourceFile)
	return err
}

// ReviewedInvoice is a candidate that passed through approval, automatic or human.
type ReviewedInvoice struct {
	InvoiceCandidate
	Approved   bool      `json:"approved"`
	ReviewedBy string    `json:"reviewedBy"`
	ReviewedAt time.Time `json:"reviewedAt"`
}

// InvoiceStatus tracks the lifecycle of a persisted invoice record.
type InvoiceStatus string

const (
	InvoiceReceived       InvoiceStatus = "RECEIVED"
	InvoiceAwaitingReview InvoiceStatus = "AWAITING_REVIEW"
	InvoicePosted         InvoiceStatus = "POSTED"
	InvoiceRejected       InvoiceStatus = "REJECTED"
	InvoiceFailed         InvoiceStatus = "FAILED"
)

// InvoiceRecord is the durable record of a submitted invoice, unique by InvoiceNumber.
type InvoiceRecord struct {
	InvoiceID     string          `json:"invoiceID"`     // Primary Key (UUID)
	InvoiceNumber string          `json:"invoiceNumber"` // Unique, duplicate-detection key
	Vendor        string          `json:"vendor"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	InvoiceDate   time.Time       `json:"invoiceDate"`
	Status        InvoiceStatus   `json:"status"`
	TaskID        string          `json:"taskID"`
	LedgerEntryID *string         `json:"ledgerEntryID,omitempty"`
	AuditFields
}

// DuplicateVerdict is the result of a duplicate check.
type DuplicateVerdict struct {
	IsDuplicate bool   `json:"isDuplicate"`
	Reason      string `json:"reason"`
}
