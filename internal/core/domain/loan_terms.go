package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LoanPolicy holds the pricing rules of one loan product
type LoanPolicy struct {
	Code              LoanType
	MonthlyRate       decimal.Decimal
	ProcessingFeeRate decimal.Decimal
	MinTerm           int
	MaxTerm           int
	MaxAmount         decimal.Decimal // zero means no cap
}

// Rate returns the up-front interest rate for a term in months
func (p LoanPolicy) Rate(term int) decimal.Decimal {
	return p.MonthlyRate.Mul(decimal.NewFromInt(int64(term)))
}

// Validate checks principal and term against the policy
func (p LoanPolicy) Validate(principal decimal.Decimal, term int) error {
	if !principal.IsPositive() {
		return fmt.Errorf("%w: loan amount must be greater than 0", ErrInvalidInput)
	}
	if term < p.MinTerm || term > p.MaxTerm {
		return fmt.Errorf("%w: term must be between %d and %d months for %s", ErrInvalidInput, p.MinTerm, p.MaxTerm, p.Code)
	}
	if p.MaxAmount.IsPositive() && principal.GreaterThan(p.MaxAmount) {
		return fmt.Errorf("%w: loan amount exceeds %s limit of %s", ErrInvalidInput, p.Code, p.MaxAmount.StringFixed(2))
	}
	return nil
}

// LoanTerms are the figures fixed when a loan is approved
type LoanTerms struct {
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	ProcessingFee  decimal.Decimal
	ReleaseAmount  decimal.Decimal
	MonthlyPayment decimal.Decimal
	Term           int
	DueDateMonth   time.Time
	DueDateTerm    time.Time
}

// ComputeLoanTerms prices a loan approved at approvedAt.
// Interest and the processing fee are deducted from the released amount.
func ComputeLoanTerms(principal decimal.Decimal, term int, policy LoanPolicy, approvedAt time.Time) (LoanTerms, error) {
	if err := policy.Validate(principal, term); err != nil {
		return LoanTerms{}, err
	}

	interest := principal.Mul(policy.Rate(term)).Round(2)
	fee := principal.Mul(policy.ProcessingFeeRate).Round(2)
	release := principal.Sub(interest).Sub(fee)
	if !release.IsPositive() {
		return LoanTerms{}, fmt.Errorf("%w: interest and fees exceed the loan amount", ErrInvalidState)
	}

	return LoanTerms{
		Principal:      principal,
		Interest:       interest,
		ProcessingFee:  fee,
		ReleaseAmount:  release,
		MonthlyPayment: principal.Div(decimal.NewFromInt(int64(term))).Round(2),
		Term:           term,
		DueDateMonth:   approvedAt.Add(DueCycle),
		DueDateTerm:    approvedAt.Add(time.Duration(term) * DueCycle),
	}, nil
}
