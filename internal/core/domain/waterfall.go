package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanPosition is the part of a loan account a payment can move
type LoanPosition struct {
	Principal      decimal.Decimal
	InterestDue    decimal.Decimal
	MonthlyPayment decimal.Decimal
	DueDateMonth   time.Time
}

// PaymentAllocation is the outcome of applying one payment to a loan
type PaymentAllocation struct {
	Payment       decimal.Decimal
	InterestPaid  decimal.Decimal
	PrincipalPaid decimal.Decimal
	// Excess is what remained after interest; it is what the member's balance is credited.
	Excess decimal.Decimal
	// Discarded is the part of Excess beyond the remaining principal. It is not carried forward.
	Discarded decimal.Decimal
	After     LoanPosition
	PaidOff   bool
}

// ApplyPayment allocates a payment interest first, then principal.
//
// If the payment does not cover the accrued interest only the interest is
// reduced. Otherwise interest is cleared and the excess reduces principal
// and the monthly payment (floored at zero). A payment that clears the
// principal pays the loan off; anything beyond that is discarded. While the
// loan stays open the monthly due date rolls forward one cycle on every
// payment regardless of size.
func ApplyPayment(loan LoanPosition, payment decimal.Decimal) PaymentAllocation {
	alloc := PaymentAllocation{
		Payment:       payment,
		InterestPaid:  decimal.Zero,
		PrincipalPaid: decimal.Zero,
		Excess:        decimal.Zero,
		Discarded:     decimal.Zero,
		After:         loan,
	}

	if payment.LessThanOrEqual(loan.InterestDue) {
		alloc.InterestPaid = payment
		alloc.After.InterestDue = loan.InterestDue.Sub(payment)
	} else {
		alloc.InterestPaid = loan.InterestDue
		alloc.After.InterestDue = decimal.Zero
		alloc.Excess = payment.Sub(loan.InterestDue)

		if alloc.Excess.GreaterThanOrEqual(loan.Principal) {
			alloc.PrincipalPaid = loan.Principal
			alloc.Discarded = alloc.Excess.Sub(loan.Principal)
			alloc.After.Principal = decimal.Zero
		} else {
			alloc.PrincipalPaid = alloc.Excess
			alloc.After.Principal = loan.Principal.Sub(alloc.Excess)
		}
	}

	if alloc.After.Principal.IsZero() {
		alloc.PaidOff = true
		alloc.After.MonthlyPayment = decimal.Zero
		return alloc
	}

	alloc.After.MonthlyPayment = decimal.Max(decimal.Zero, loan.MonthlyPayment.Sub(alloc.Excess))
	alloc.After.DueDateMonth = loan.DueDateMonth.Add(DueCycle)
	return alloc
}
