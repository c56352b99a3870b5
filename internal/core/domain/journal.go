package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest accepted difference between total debits and total credits.
var BalanceTolerance = decimal.New(1, -2)

var (
	ErrJournalMinLines    = errors.New("journal entry must have at least two lines")
	ErrJournalLineSides   = errors.New("journal line must carry exactly one positive side")
	ErrJournalLineAccount = errors.New("journal line account name is required")
	ErrJournalNoDebit     = errors.New("journal entry has no debit line")
	ErrJournalNoCredit    = errors.New("journal entry has no credit line")
	ErrJournalUnbalanced  = errors.New("journal entry debits and credits do not balance")
)

// JournalLine is one debit or credit line of a journal entry.
type JournalLine struct {
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntry records an approved invoice as balanced debit/credit lines.
type JournalEntry struct {
	EntryDate     time.Time     `json:"entryDate"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Vendor        string        `json:"vendor"`
	Description   string        `json:"description"`
	CurrencyCode  string        `json:"currencyCode"`
	Lines         []JournalLine `json:"lines"`
	Workbook      *FileRef      `json:"workbook,omitempty"` // Set after export
}

// TotalDebits sums the debit side.
func (e JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Debit)
	}
	return total
}

// TotalCredits sums the credit side.
func (e JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, line := range e.Lines {
		total = total.Add(line.Credit)
	}
	return total
}

// IsBalanced reports whether debits equal credits within BalanceTolerance.
func (e JournalEntry) IsBalanced() bool {
	return e.TotalDebits().Sub(e.TotalCredits()).Abs().LessThan(BalanceTolerance)
}

// Validate checks line shape and the balance invariant. An entry failing it must not be persisted or sent.
func (e JournalEntry) Validate() error {
	if len(e.Lines) < 2 {
		return ErrJournalMinLines
	}

	debitLines, creditLines := 0, 0
	for i, line := range e.Lines {
		if line.AccountName == "" {
			return fmt.Errorf("%w: line %d", ErrJournalLineAccount, i)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", ErrJournalLineSides, i)
		}
		switch {
		case line.Debit.IsPositive() && line.Credit.IsZero():
			debitLines++
		case line.Credit.IsPositive() && line.Debit.IsZero():
			creditLines++
		default:
			return fmt.Errorf("%w: line %d (%s)", ErrJournalLineSides, i, line.AccountName)
		}
	}

	if debitLines == 0 {
		return ErrJournalNoDebit
	}
	if creditLines == 0 {
		return ErrJournalNoCredit
	}

	if !e.IsBalanced() {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			ErrJournalUnbalanced, e.TotalDebits().String(), e.TotalCredits().String())
	}
	return nil
}

// LedgerPostingResult is the ledger's answer to a posting. EntryID is the idempotency token.
type LedgerPostingResult struct {
	Success   bool      `json:"success"`
	EntryID   string    `json:"entryId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerEntryStatus is the ledger-side state of a posted entry.
type LedgerEntryStatus string

const (
	LedgerEntryPosted   LedgerEntryStatus = "POSTED"
	LedgerEntryPending  LedgerEntryStatus = "PENDING"
	LedgerEntryRejected LedgerEntryStatus = "REJECTED"
	LedgerEntryNotFound LedgerEntryStatus = "NOT_FOUND"
)
