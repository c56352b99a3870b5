package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceCandidate(t *testing.T) {
	date := time.Date(2025, 3, 14, 9, 30, 0, 0, time.FixedZone("IST", 19800))
	source := domain.FileRef{Key: "invoices/t1/acme.pdf", FileName: "acme.pdf"}

	tests := []struct {
		name    string
		vendor  string
		amount  decimal.Decimal
		number  string
		wantErr error
	}{
		{name: "valid", vendor: " Acme ", amount: decimal.NewFromInt(500), number: " INV-1 "},
		{name: "zero amount allowed", vendor: "Acme", amount: decimal.Zero, number: "INV-2"},
		{name: "negative amount", vendor: "Acme", amount: decimal.NewFromInt(-1), number: "INV-3", wantErr: domain.ErrNegativeAmount},
		{name: "missing vendor", vendor: "  ", amount: decimal.NewFromInt(1), number: "INV-4", wantErr: domain.ErrVendorRequired},
		{name: "missing number", vendor: "Acme", amount: decimal.NewFromInt(1), number: "", wantErr: domain.ErrInvoiceNumberRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NewInvoiceCandidate(tt.vendor, tt.amount, "office chairs", date, tt.number, source)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Acme", got.Vendor)
			assert.NotContains(t, got.InvoiceNumber, " ")
			assert.Equal(t, time.UTC, got.InvoiceDate.Location())
			assert.True(t, got.InvoiceDate.Equal(date))
			assert.Equal(t, source, got.SourceFile)
		})
	}
}

func TestReviewDecision_Apply(t *testing.T) {
	now := time.Now()
	source := domain.FileRef{Key: "invoices/t1/acme.pdf", FileName: "acme.pdf"}
	candidate, err := domain.NewInvoiceCandidate("Acme", decimal.NewFromInt(1500), "laptops", now, "INV-9", source)
	require.NoError(t, err)

	t.Run("verbatim confirmation", func(t *testing.T) {
		reviewed, err := domain.ReviewDecision{Approved: true, Reviewer: "alice"}.Apply(candidate, now)
		require.NoError(t, err)
		assert.True(t, reviewed.Approved)
		assert.Equal(t, candidate, reviewed.InvoiceCandidate)
		assert.Equal(t, "alice", reviewed.ReviewedBy)
	})

	t.Run("complete replacement keeps source file", func(t *testing.T) {
		replacement := domain.InvoiceCandidate{
			Vendor:        "Acme Corp",
			Amount:        decimal.NewFromInt(1450),
			Description:   "laptops, discounted",
			InvoiceDate:   now,
			InvoiceNumber: "INV-9",
		}
		reviewed, err := domain.ReviewDecision{Approved: true, Invoice: &replacement}.Apply(candidate, now)
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", reviewed.Vendor)
		assert.True(t, reviewed.Amount.Equal(decimal.NewFromInt(1450)))
		assert.Equal(t, source, reviewed.SourceFile)
	})

	t.Run("invalid replacement", func(t *testing.T) {
		replacement := domain.InvoiceCandidate{Vendor: "Acme", Amount: decimal.NewFromInt(-3), InvoiceNumber: "INV-9"}
		_, err := domain.ReviewDecision{Approved: true, Invoice: &replacement}.Apply(candidate, now)
		assert.ErrorIs(t, err, domain.ErrNegativeAmount)
	})

	t.Run("rejection ignores replacement", func(t *testing.T) {
		replacement := domain.InvoiceCandidate{Vendor: "", Amount: decimal.NewFromInt(-3)}
		reviewed, err := domain.ReviewDecision{Approved: false, Invoice: &replacement, Reviewer: "bob"}.Apply(candidate, now)
		require.NoError(t, err)
		assert.False(t, reviewed.Approved)
		assert.Equal(t, candidate, reviewed.InvoiceCandidate)
	})
}

func TestPipelineState_IsTerminal(t *testing.T) {
	assert.False(t, domain.StateAwaitingHumanReview.IsTerminal())
	assert.False(t, domain.StatePosting.IsTerminal())
	assert.True(t, domain.StatePosted.IsTerminal())
	assert.True(t, domain.StateRejected.IsTerminal())
	assert.True(t, domain.StateFailed.IsTerminal())
	assert.True(t, domain.StateCancelled.IsTerminal())
}
