package domain_test

import (
	"testing"

	"github.com/SscSPs/invoice_pipeline/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoApproveUnderThreshold(t *testing.T) {
	threshold := decimal.NewFromInt(1000)

	tests := []struct {
		name     string
		amount   decimal.Decimal
		approved bool
	}{
		{name: "zero amount", amount: decimal.Zero, approved: true},
		{name: "well under threshold", amount: decimal.NewFromInt(500), approved: true},
		{name: "one cent under threshold", amount: decimal.RequireFromString("999.99"), approved: true},
		{name: "equal to threshold", amount: decimal.NewFromInt(1000), approved: false},
		{name: "one cent over threshold", amount: decimal.RequireFromString("1000.01"), approved: false},
		{name: "well over threshold", amount: decimal.NewFromInt(1500), approved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.AutoApproveUnderThreshold(tt.amount, threshold)
			assert.Equal(t, tt.approved, got.Approved)
			assert.Contains(t, got.Reason, "1000")
		})
	}
}

func TestNewApprovalPolicy(t *testing.T) {
	_, err := domain.NewApprovalPolicy(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)

	_, err = domain.NewApprovalPolicy(nil, decimal.NewFromInt(-10))
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)

	policy, err := domain.NewApprovalPolicy(nil, decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, policy.Evaluate(decimal.NewFromInt(500)).Approved)
	assert.False(t, policy.Evaluate(decimal.NewFromInt(1000)).Approved)
	assert.True(t, policy.Threshold().Equal(decimal.NewFromInt(1000)))
}

func TestApprovalPolicy_CustomRule(t *testing.T) {
	alwaysReview := func(amount, threshold decimal.Decimal) domain.ApprovalDecision {
		return domain.ApprovalDecision{Approved: false, Reason: "every invoice is reviewed"}
	}

	policy, err := domain.NewApprovalPolicy(alwaysReview, decimal.NewFromInt(1000))
	require.NoError(t, err)

	got := policy.Evaluate(decimal.NewFromInt(1))
	assert.False(t, got.Approved)
	assert.Equal(t, "every invoice is reviewed", got.Reason)
}
