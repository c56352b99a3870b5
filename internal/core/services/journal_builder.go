package services

import (
	"fmt"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_pipeline/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// JournalAccounts names the accounts of the two-line invoice template.
type JournalAccounts struct {
	Expense      string
	Payable      string
	CurrencyCode string
}

type journalBuilder struct {
	accounts JournalAccounts
}

// NewJournalBuilder creates a builder for the expense/payable template.
func NewJournalBuilder(accounts JournalAccounts) portssvc.JournalBuilderSvc {
	return &journalBuilder{accounts: accounts}
}

var _ portssvc.JournalBuilderSvc = (*journalBuilder)(nil)

// Build debits the expense account and credits accounts payable with the invoice amount.
func (b *journalBuilder) Build(invoice domain.ReviewedInvoice) (*domain.JournalEntry, error) {
	if !invoice.Approved {
		return nil, fmt.Errorf("%w: invoice %s is not approved", apperrors.ErrValidation, invoice.InvoiceNumber)
	}

	entry := &domain.JournalEntry{
		EntryDate:     invoice.InvoiceDate,
		InvoiceNumber: invoice.InvoiceNumber,
		Vendor:        invoice.Vendor,
		Description:   fmt.Sprintf("Invoice %s from %s: %s", invoice.InvoiceNumber, invoice.Vendor, invoice.Description),
		CurrencyCode:  b.accounts.CurrencyCode,
		Lines: []domain.JournalLine{
			{AccountName: b.accounts.Expense, Debit: invoice.Amount, Credit: decimal.Zero},
			{AccountName: b.accounts.Payable, Debit: decimal.Zero, Credit: invoice.Amount},
		},
	}

	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invoice %s: %v", apperrors.ErrUnbalancedEntry, invoice.InvoiceNumber, err)
	}
	return entry, nil
}
