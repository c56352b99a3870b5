// Package ledger holds the Ledger API client, an in-process ledger and the HTTP handler serving it.
package ledger

import (
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryIDHeader is set by the ledger on any response once an entry id has been issued,
// including error responses written after the id was assigned.
const EntryIDHeader = "X-Ledger-Entry-Id"

type linePayload struct {
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type entryPayload struct {
	EntryDate     time.Time     `json:"entryDate"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Vendor        string        `json:"vendor"`
	Description   string        `json:"description"`
	CurrencyCode  string        `json:"currencyCode,omitempty"`
	Lines         []linePayload `json:"lines"`
}

type postingPayload struct {
	Success   bool      `json:"success"`
	EntryID   string    `json:"entryId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type statusPayload struct {
	EntryID string `json:"entryId"`
	Status  string `json:"status"`
}

func toEntryPayload(entry domain.JournalEntry) entryPayload {
	lines := make([]linePayload, 0, len(entry.Lines))
	for _, l := range entry.Lines {
		lines = append(lines, linePayload{AccountName: l.AccountName, Debit: l.Debit, Credit: l.Credit})
	}
	return entryPayload{
		EntryDate:     entry.EntryDate,
		InvoiceNumber: entry.InvoiceNumber,
		Vendor:        entry.Vendor,
		Description:   entry.Description,
		CurrencyCode:  entry.CurrencyCode,
		Lines:         lines,
	}
}

func (p entryPayload) toDomain() domain.JournalEntry {
	lines := make([]domain.JournalLine, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, domain.JournalLine{AccountName: l.AccountName, Debit: l.Debit, Credit: l.Credit})
	}
	return domain.JournalEntry{
		EntryDate:     p.EntryDate,
		InvoiceNumber: p.InvoiceNumber,
		Vendor:        p.Vendor,
		Description:   p.Description,
		CurrencyCode:  p.CurrencyCode,
		Lines:         lines,
	}
}

func toPostingPayload(r domain.LedgerPostingResult) postingPayload {
	return postingPayload{Success: r.Success, EntryID: r.EntryID, Message: r.Message, Timestamp: r.Timestamp}
}

func (p postingPayload) toDomain() *domain.LedgerPostingResult {
	return &domain.LedgerPostingResult{Success: p.Success, EntryID: p.EntryID, Message: p.Message, Timestamp: p.Timestamp}
}
