package models

import (
	"time"

	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============================================================
// Member Accounts
// ============================================================

// Member represents members table
type Member struct {
	MemberID             string              `gorm:"primaryKey;size:36" json:"member_id"`
	FirstName            string              `gorm:"size:100;not null" json:"first_name"`
	LastName             string              `gorm:"size:100;not null" json:"last_name"`
	Email                string              `gorm:"size:100;index" json:"email"`
	LineUserID           string              `gorm:"size:50" json:"line_user_id,omitempty"`
	Balance              decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"balance"`
	OutstandingLoanTotal decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"outstanding_loan_total"`
	Status               domain.MemberStatus `gorm:"size:10;not null;index" json:"status"`
	Version              uint                `gorm:"not null" json:"-"`
	CreatedAt            time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// IsActive reports whether the membership is still active
func (m *Member) IsActive() bool {
	return m.Status == domain.MemberActive
}

// FundsPool is the single row holding the cooperative's liquidity
type FundsPool struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Total     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (FundsPool) TableName() string {
	return "funds_pool"
}

// ============================================================
// Loan Register
// ============================================================

// LoanAccount represents an active loan; a member holds at most one.
// Rows are hard deleted once principal reaches zero.
type LoanAccount struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	MemberID       string          `gorm:"size:36;not null;uniqueIndex" json:"member_id"`
	TransactionID  string          `gorm:"size:64;not null" json:"transaction_id"`
	LoanType       domain.LoanType `gorm:"size:20;not null" json:"loan_type"`
	Principal      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"principal"`
	InterestDue    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"interest_due"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_payment"`
	MonthlyRate    decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"monthly_rate"`
	Term           int             `gorm:"not null" json:"term"`
	DueDateMonth   time.Time       `gorm:"not null;index" json:"due_date_month"`
	DueDateTerm    time.Time       `gorm:"not null" json:"due_date_term"`
	LastAccruedAt  *time.Time      `json:"last_accrued_at"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanAccount) TableName() string {
	return "loan_accounts"
}

// Position returns the part of the loan a payment moves
func (l *LoanAccount) Position() domain.LoanPosition {
	return domain.LoanPosition{
		Principal:      l.Principal,
		InterestDue:    l.InterestDue,
		MonthlyPayment: l.MonthlyPayment,
		DueDateMonth:   l.DueDateMonth,
	}
}

// ApplyPosition copies a post-payment position back onto the loan
func (l *LoanAccount) ApplyPosition(p domain.LoanPosition) {
	l.Principal = p.Principal
	l.InterestDue = p.InterestDue
	l.MonthlyPayment = p.MonthlyPayment
	l.DueDateMonth = p.DueDateMonth
}

// LoanType ประเภทเงินกู้ (Master)
type LoanType struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	Code              string          `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name              string          `gorm:"size:100;not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	MonthlyRate       decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"monthly_rate"`
	ProcessingFeeRate decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"processing_fee_rate"`
	MinTerm           int             `gorm:"not null" json:"min_term"`
	MaxTerm           int             `gorm:"not null" json:"max_term"`
	MaxAmount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (LoanType) TableName() string {
	return "loan_types"
}

// Policy converts the master row to pricing rules
func (lt *LoanType) Policy() domain.LoanPolicy {
	return domain.LoanPolicy{
		Code:              domain.LoanType(lt.Code),
		MonthlyRate:       lt.MonthlyRate,
		ProcessingFeeRate: lt.ProcessingFeeRate,
		MinTerm:           lt.MinTerm,
		MaxTerm:           lt.MaxTerm,
		MaxAmount:         lt.MaxAmount,
	}
}

// ============================================================
// Request Queue & Ledger
// ============================================================

// TransactionRequest is a member-submitted request awaiting a decision.
// (member_id, transaction_id) is the idempotency key.
type TransactionRequest struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	MemberID      string              `gorm:"size:36;not null;uniqueIndex:ux_requests_member_tx" json:"member_id"`
	TransactionID string              `gorm:"size:64;not null;uniqueIndex:ux_requests_member_tx" json:"transaction_id"`
	Kind          domain.Kind         `gorm:"size:30;not null;index" json:"kind"`
	Amount        decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"amount"`
	Channel       domain.Channel      `gorm:"size:10" json:"channel,omitempty"`
	AccountName   string              `gorm:"size:100" json:"account_name,omitempty"`
	AccountNumber string              `gorm:"size:50" json:"account_number,omitempty"`
	ProofURL      string              `gorm:"size:500" json:"proof_url,omitempty"`
	Term          int                 `json:"term,omitempty"`
	LoanType      domain.LoanType     `gorm:"size:20" json:"loan_type,omitempty"`
	Reason        string              `gorm:"type:text" json:"reason,omitempty"`
	State         domain.RequestState `gorm:"size:10;not null;index" json:"state"`
	DateApplied   time.Time           `gorm:"not null" json:"date_applied"`
	DecidedAt     *time.Time          `json:"decided_at,omitempty"`
	DecidedBy     string              `gorm:"size:50" json:"decided_by,omitempty"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TransactionRequest) TableName() string {
	return "transaction_requests"
}

// LedgerEntry is the write-once record of a settled request
type LedgerEntry struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	Reference     string              `gorm:"size:36;not null;uniqueIndex" json:"reference"`
	Kind          domain.Kind         `gorm:"size:30;not null;uniqueIndex:ux_ledger_kind_member_tx" json:"kind"`
	MemberID      string              `gorm:"size:36;not null;uniqueIndex:ux_ledger_kind_member_tx;index" json:"member_id"`
	TransactionID string              `gorm:"size:64;not null;uniqueIndex:ux_ledger_kind_member_tx" json:"transaction_id"`
	Status        domain.RequestState `gorm:"size:10;not null;index" json:"status"`

	// Copy of the request
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Channel       domain.Channel  `gorm:"size:10" json:"channel,omitempty"`
	AccountName   string          `gorm:"size:100" json:"account_name,omitempty"`
	AccountNumber string          `gorm:"size:50" json:"account_number,omitempty"`
	ProofURL      string          `gorm:"size:500" json:"proof_url,omitempty"`
	Term          int             `json:"term,omitempty"`
	LoanType      domain.LoanType `gorm:"size:20" json:"loan_type,omitempty"`
	Reason        string          `gorm:"type:text" json:"reason,omitempty"`
	DateApplied   time.Time       `gorm:"not null" json:"date_applied"`

	// Settlement results
	SettledAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"settled_amount"`
	Interest      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"interest"`
	ProcessingFee decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"processing_fee"`
	ReleaseAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"release_amount"`
	InterestPaid  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"interest_paid"`
	PrincipalPaid decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"principal_paid"`
	Discarded     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"discarded"`
	PoolDelta     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"pool_delta"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	DateApproved  *time.Time      `json:"date_approved,omitempty"`
	DateRejected  *time.Time      `json:"date_rejected,omitempty"`
	DecidedBy     string          `gorm:"size:50" json:"decided_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry copies a request into an unsettled ledger entry with zeroed results
func NewLedgerEntry(req *TransactionRequest, reference string) *LedgerEntry {
	return &LedgerEntry{
		Reference:     reference,
		Kind:          req.Kind,
		MemberID:      req.MemberID,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Channel:       req.Channel,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		ProofURL:      req.ProofURL,
		Term:          req.Term,
		LoanType:      req.LoanType,
		Reason:        req.Reason,
		DateApplied:   req.DateApplied,
		SettledAmount: decimal.Zero,
		Interest:      decimal.Zero,
		ProcessingFee: decimal.Zero,
		ReleaseAmount: decimal.Zero,
		InterestPaid:  decimal.Zero,
		PrincipalPaid: decimal.Zero,
		Discarded:     decimal.Zero,
		PoolDelta:     decimal.Zero,
		BalanceAfter:  decimal.Zero,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Accounts
		&Member{},
		&FundsPool{},
		// Loans
		&LoanType{},
		&LoanAccount{},
		// Queue & Ledger
		&TransactionRequest{},
		&LedgerEntry{},
	)
}
