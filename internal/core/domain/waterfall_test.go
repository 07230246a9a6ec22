package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestApplyPaymentCoversInterestAndPartOfPrincipal(t *testing.T) {
	due := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := LoanPosition{Principal: d("10000"), InterestDue: d("500"), MonthlyPayment: d("1000"), DueDateMonth: due}

	alloc := ApplyPayment(loan, d("700"))

	assert.True(t, alloc.After.InterestDue.IsZero())
	assert.True(t, alloc.Excess.Equal(d("200")))
	assert.True(t, alloc.After.Principal.Equal(d("9800")))
	assert.True(t, alloc.InterestPaid.Equal(d("500")))
	assert.True(t, alloc.PrincipalPaid.Equal(d("200")))
	assert.True(t, alloc.After.MonthlyPayment.Equal(d("800")))
	assert.Equal(t, due.Add(DueCycle), alloc.After.DueDateMonth)
	assert.False(t, alloc.PaidOff)
}

func TestApplyPaymentBelowInterestLeavesPrincipal(t *testing.T) {
	due := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	loan := LoanPosition{Principal: d("10000"), InterestDue: d("500"), MonthlyPayment: d("1000"), DueDateMonth: due}

	alloc := ApplyPayment(loan, d("300"))

	assert.True(t, alloc.After.InterestDue.Equal(d("200")))
	assert.True(t, alloc.After.Principal.Equal(d("10000")))
	assert.True(t, alloc.Excess.IsZero())
	assert.True(t, alloc.After.MonthlyPayment.Equal(d("1000")))
	// rollover happens on every payment, whatever its size
	assert.Equal(t, due.Add(DueCycle), alloc.After.DueDateMonth)
}

func TestApplyPaymentExactlyInterest(t *testing.T) {
	loan := LoanPosition{Principal: d("10000"), InterestDue: d("500"), MonthlyPayment: d("1000")}

	alloc := ApplyPayment(loan, d("500"))

	assert.True(t, alloc.After.InterestDue.IsZero())
	assert.True(t, alloc.Excess.IsZero())
	assert.True(t, alloc.After.Principal.Equal(d("10000")))
}

func TestApplyPaymentFullPayoffDiscardsRemainder(t *testing.T) {
	loan := LoanPosition{Principal: d("100"), InterestDue: d("50"), MonthlyPayment: d("100")}

	alloc := ApplyPayment(loan, d("500"))

	assert.True(t, alloc.PaidOff)
	assert.True(t, alloc.After.InterestDue.IsZero())
	assert.True(t, alloc.After.Principal.IsZero())
	assert.True(t, alloc.Excess.Equal(d("450")))
	assert.True(t, alloc.PrincipalPaid.Equal(d("100")))
	// 350 over the remaining principal is not credited anywhere on the loan
	assert.True(t, alloc.Discarded.Equal(d("350")))
}

func TestApplyPaymentExactPayoff(t *testing.T) {
	loan := LoanPosition{Principal: d("100"), InterestDue: d("0"), MonthlyPayment: d("50")}

	alloc := ApplyPayment(loan, d("100"))

	assert.True(t, alloc.PaidOff)
	assert.True(t, alloc.Discarded.IsZero())
}

func TestApplyPaymentMonthlyPaymentFloorsAtZero(t *testing.T) {
	loan := LoanPosition{Principal: d("5000"), InterestDue: d("0"), MonthlyPayment: d("500")}

	alloc := ApplyPayment(loan, d("2000"))

	assert.False(t, alloc.PaidOff)
	assert.True(t, alloc.After.Principal.Equal(d("3000")))
	assert.True(t, alloc.After.MonthlyPayment.IsZero())
}
