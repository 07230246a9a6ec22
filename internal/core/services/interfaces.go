package services

import (
	"context"
	"time"

	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Dispatcher hands settlement results and due reminders to an external
// channel (email/push gateway, message broker, log). Implementations must be
// safe for concurrent use.
type Dispatcher interface {
	Name() string
	SendSettlement(ctx context.Context, notice SettlementNotice) error
	SendDueReminder(ctx context.Context, reminder DueReminder) error
}

// SettlementNotice is the payload sent after a request is approved or rejected
type SettlementNotice struct {
	MemberID      string          `json:"memberId"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	DateApproved  *time.Time      `json:"dateApproved,omitempty"`
	DateRejected  *time.Time      `json:"dateRejected,omitempty"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Email         string          `json:"email"`
	Kind          domain.Kind     `json:"kind"`
}

// DueReminder tells a member their monthly loan payment is coming due
type DueReminder struct {
	MemberID       string          `json:"memberId"`
	TransactionID  string          `json:"transactionId"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	InterestDue    decimal.Decimal `json:"interestDue"`
	Principal      decimal.Decimal `json:"principal"`
	DueDate        time.Time       `json:"dueDate"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	Email          string          `json:"email"`
}
