package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LapsedCycles counts the due-date boundaries (dueDateMonth, +30d, +60d, ...)
// strictly before now that are later than lastAccrued. It also returns the
// latest such boundary. A nil lastAccrued means nothing was accrued yet.
func LapsedCycles(dueDateMonth time.Time, lastAccrued *time.Time, now time.Time) (int, time.Time) {
	var (
		cycles int
		latest time.Time
	)
	for boundary := dueDateMonth; boundary.Before(now); boundary = boundary.Add(DueCycle) {
		if lastAccrued == nil || boundary.After(*lastAccrued) {
			cycles++
			latest = boundary
		}
	}
	return cycles, latest
}

// MonthlyInterest is the interest one lapsed cycle adds to a loan
func MonthlyInterest(principal, monthlyRate decimal.Decimal) decimal.Decimal {
	return principal.Mul(monthlyRate).Round(2)
}
