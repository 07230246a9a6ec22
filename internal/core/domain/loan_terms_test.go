package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regularPolicy() LoanPolicy {
	return LoanPolicy{
		Code:              LoanRegular,
		MonthlyRate:       d("0.02"),
		ProcessingFeeRate: d("0.01"),
		MinTerm:           1,
		MaxTerm:           24,
	}
}

func TestComputeLoanTerms(t *testing.T) {
	approvedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	terms, err := ComputeLoanTerms(d("10000"), 6, regularPolicy(), approvedAt)
	require.NoError(t, err)

	// 2% x 6 months = 12% up front, 1% processing fee
	assert.True(t, terms.Interest.Equal(d("1200")))
	assert.True(t, terms.ProcessingFee.Equal(d("100")))
	assert.True(t, terms.ReleaseAmount.Equal(d("8700")))
	assert.True(t, terms.MonthlyPayment.Equal(d("1666.67")))
	assert.Equal(t, approvedAt.Add(30*24*time.Hour), terms.DueDateMonth)
	assert.Equal(t, approvedAt.Add(6*30*24*time.Hour), terms.DueDateTerm)
}

func TestComputeLoanTermsRejectsTermOutOfRange(t *testing.T) {
	_, err := ComputeLoanTerms(d("10000"), 36, regularPolicy(), time.Now())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestComputeLoanTermsRejectsAmountOverCap(t *testing.T) {
	policy := regularPolicy()
	policy.Code = LoanQuickCash
	policy.MaxAmount = d("5000")

	_, err := ComputeLoanTerms(d("5000.01"), 3, policy, time.Now())
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestComputeLoanTermsRejectsNonPositiveRelease(t *testing.T) {
	policy := regularPolicy()
	policy.MonthlyRate = d("0.5")

	_, err := ComputeLoanTerms(d("1000"), 2, policy, time.Now())
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestIsBenign(t *testing.T) {
	assert.True(t, IsBenign(ErrAlreadyProcessed))
	assert.True(t, IsBenign(ErrRequestNotFound))
	assert.False(t, IsBenign(ErrDataIntegrity))
	assert.True(t, IsFatal(ErrPersistence))
}
