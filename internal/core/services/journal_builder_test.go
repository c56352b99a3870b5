package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/apperrors"
	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/SscSPs/invoice_pipeline/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewedInvoice(amount decimal.Decimal, approved bool) domain.ReviewedInvoice {
	return domain.ReviewedInvoice{
		InvoiceCandidate: domain.InvoiceCandidate{
			Vendor:        "Acme",
			Amount:        amount,
			Description:   "office chairs",
			InvoiceDate:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			InvoiceNumber: "INV-1",
		},
		Approved: approved,
	}
}

func TestJournalBuilder_Build(t *testing.T) {
	builder := services.NewJournalBuilder(services.JournalAccounts{Expense: "Expenses", Payable: "Accounts Payable", CurrencyCode: "EUR"})

	entry, err := builder.Build(reviewedInvoice(decimal.RequireFromString("500.25"), true))
	require.NoError(t, err)

	require.Len(t, entry.Lines, 2)
	assert.Equal(t, "Expenses", entry.Lines[0].AccountName)
	assert.True(t, entry.Lines[0].Debit.Equal(decimal.RequireFromString("500.25")))
	assert.True(t, entry.Lines[0].Credit.IsZero())
	assert.Equal(t, "Accounts Payable", entry.Lines[1].AccountName)
	assert.True(t, entry.Lines[1].Credit.Equal(decimal.RequireFromString("500.25")))
	assert.True(t, entry.IsBalanced())
	assert.Equal(t, "EUR", entry.CurrencyCode)
	assert.Equal(t, "INV-1", entry.InvoiceNumber)
	assert.Contains(t, entry.Description, "Acme")
}

func TestJournalBuilder_Deterministic(t *testing.T) {
	builder := services.NewJournalBuilder(services.JournalAccounts{Expense: "Expenses", Payable: "Accounts Payable", CurrencyCode: "USD"})
	invoice := reviewedInvoice(decimal.NewFromInt(42), true)

	first, err := builder.Build(invoice)
	require.NoError(t, err)
	second, err := builder.Build(invoice)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestJournalBuilder_ZeroAmountIsUnbalanced(t *testing.T) {
	builder := services.NewJournalBuilder(services.JournalAccounts{Expense: "Expenses", Payable: "Accounts Payable", CurrencyCode: "USD"})

	_, err := builder.Build(reviewedInvoice(decimal.Zero, true))

	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
}

func TestJournalBuilder_MissingAccount(t *testing.T) {
	builder := services.NewJournalBuilder(services.JournalAccounts{Expense: "Expenses", CurrencyCode: "USD"})

	_, err := builder.Build(reviewedInvoice(decimal.NewFromInt(10), true))

	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
}

func TestJournalBuilder_RequiresApproval(t *testing.T) {
	builder := services.NewJournalBuilder(services.JournalAccounts{Expense: "Expenses", Payable: "Accounts Payable", CurrencyCode: "USD"})

	_, err := builder.Build(reviewedInvoice(decimal.NewFromInt(10), false))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
