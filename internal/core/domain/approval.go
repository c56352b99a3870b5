package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidThreshold is returned when an approval policy is configured with a non-positive threshold.
var ErrInvalidThreshold = errors.New("auto-approval threshold must be greater than zero")

// ApprovalDecision is the verdict of an approval rule or a reviewer.
type ApprovalDecision struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
}

// ApprovalRule decides on an invoice amount against a threshold.
// A rule takes no context and returns no error: it cannot reach stores, clocks or networks,
// so it can be re-evaluated or audited at any time.
type ApprovalRule func(amount, threshold decimal.Decimal) ApprovalDecision

// AutoApproveUnderThreshold approves amounts strictly below the threshold.
func AutoApproveUnderThreshold(amount, threshold decimal.Decimal) ApprovalDecision {
	if amount.LessThan(threshold) {
		return ApprovalDecision{
			Approved: true,
			Reason:   fmt.Sprintf("Amount %s is under the auto-approval threshold of %s", amount.String(), threshold.String()),
		}
	}
	return ApprovalDecision{
		Approved: false,
		Reason:   fmt.Sprintf("Amount %s is not under the auto-approval threshold of %s; human review required", amount.String(), threshold.String()),
	}
}

// ApprovalPolicy binds a rule to the configured threshold.
type ApprovalPolicy struct {
	rule      ApprovalRule
	threshold decimal.Decimal
}

// NewApprovalPolicy validates the threshold once, at startup. A nil rule selects AutoApproveUnderThreshold.
func NewApprovalPolicy(rule ApprovalRule, threshold decimal.Decimal) (*ApprovalPolicy, error) {
	if !threshold.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidThreshold, threshold.String())
	}
	if rule == nil {
		rule = AutoApproveUnderThreshold
	}
	return &ApprovalPolicy{rule: rule, threshold: threshold}, nil
}

// Evaluate applies the rule to the amount.
func (p *ApprovalPolicy) Evaluate(amount decimal.Decimal) ApprovalDecision {
	return p.rule(amount, p.threshold)
}

// Threshold returns the configured threshold.
func (p *ApprovalPolicy) Threshold() decimal.Decimal {
	return p.threshold
}
