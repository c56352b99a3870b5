package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(account, debit, credit string) domain.JournalLine {
	return domain.JournalLine{
		AccountName: account,
		Debit:       decimal.RequireFromString(debit),
		Credit:      decimal.RequireFromString(credit),
	}
}

func TestJournalEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr error
	}{
		{
			name:  "balanced two-line entry",
			lines: []domain.JournalLine{line("Expenses", "500", "0"), line("Accounts Payable", "0", "500")},
		},
		{
			name:  "difference under tolerance",
			lines: []domain.JournalLine{line("Expenses", "500.004", "0"), line("Accounts Payable", "0", "500")},
		},
		{
			name:    "difference of exactly one cent",
			lines:   []domain.JournalLine{line("Expenses", "500.01", "0"), line("Accounts Payable", "0", "500")},
			wantErr: domain.ErrJournalUnbalanced,
		},
		{
			name:    "single line",
			lines:   []domain.JournalLine{line("Expenses", "500", "0")},
			wantErr: domain.ErrJournalMinLines,
		},
		{
			name:    "line with both sides",
			lines:   []domain.JournalLine{line("Expenses", "500", "500"), line("Accounts Payable", "0", "500")},
			wantErr: domain.ErrJournalLineSides,
		},
		{
			name:    "line with no side",
			lines:   []domain.JournalLine{line("Expenses", "0", "0"), line("Accounts Payable", "0", "500")},
			wantErr: domain.ErrJournalLineSides,
		},
		{
			name:    "negative debit",
			lines:   []domain.JournalLine{line("Expenses", "-5", "0"), line("Accounts Payable", "0", "5")},
			wantErr: domain.ErrJournalLineSides,
		},
		{
			name:    "credits only",
			lines:   []domain.JournalLine{line("Expenses", "0", "5"), line("Accounts Payable", "0", "5")},
			wantErr: domain.ErrJournalNoDebit,
		},
		{
			name:    "debits only",
			lines:   []domain.JournalLine{line("Expenses", "5", "0"), line("Accounts Payable", "5", "0")},
			wantErr: domain.ErrJournalNoCredit,
		},
		{
			name:    "missing account name",
			lines:   []domain.JournalLine{line("", "5", "0"), line("Accounts Payable", "0", "5")},
			wantErr: domain.ErrJournalLineAccount,
		},
		{
			name: "balanced multi-line entry",
			lines: []domain.JournalLine{
				line("Expenses", "300", "0"),
				line("Freight", "200", "0"),
				line("Accounts Payable", "0", "500"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := domain.JournalEntry{EntryDate: time.Now(), InvoiceNumber: "INV-1", Lines: tt.lines}
			err := entry.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJournalEntry_Totals(t *testing.T) {
	entry := domain.JournalEntry{Lines: []domain.JournalLine{
		line("Expenses", "120.50", "0"),
		line("Accounts Payable", "0", "120.50"),
	}}

	assert.True(t, entry.TotalDebits().Equal(decimal.RequireFromString("120.50")))
	assert.True(t, entry.TotalCredits().Equal(decimal.RequireFromString("120.50")))
	assert.True(t, entry.IsBalanced())
}
