package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a row of the invoices table. invoice_number carries the unique constraint
// that backs duplicate detection.
type Invoice struct {
	InvoiceID     string          `db:"invoice_id"`
	InvoiceNumber string          `db:"invoice_number"`
	Vendor        string          `db:"vendor"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	InvoiceDate   time.Time       `db:"invoice_date"`
	Status        string          `db:"status"`
	TaskID        string          `db:"task_id"`
	LedgerEntryID *string         `db:"ledger_entry_id"` // Nullable
	AuditFields
}
