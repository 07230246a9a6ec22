package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser    Role = "USER"
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// Kind discriminates transaction requests
type Kind string

const (
	KindDeposit              Kind = "DEPOSIT"
	KindWithdrawal           Kind = "WITHDRAWAL"
	KindLoanApplication      Kind = "LOAN_APPLICATION"
	KindLoanPayment          Kind = "LOAN_PAYMENT"
	KindMembershipWithdrawal Kind = "MEMBERSHIP_WITHDRAWAL"
)

// Kinds lists every request kind in display order
var Kinds = []Kind{
	KindDeposit,
	KindWithdrawal,
	KindLoanApplication,
	KindLoanPayment,
	KindMembershipWithdrawal,
}

// Valid checks the kind is one of the known request kinds
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// RequestState is the lifecycle state of a transaction request.
// Approved and Rejected are terminal.
type RequestState string

const (
	StatePending  RequestState = "PENDING"
	StateApproved RequestState = "APPROVED"
	StateRejected RequestState = "REJECTED"
)

// Decision is the admin verdict on a pending request
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Valid checks the decision value
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// State maps the decision to the terminal request state
func (d Decision) State() RequestState {
	if d == DecisionApprove {
		return StateApproved
	}
	return StateRejected
}

// MemberStatus represents membership status
type MemberStatus string

const (
	MemberActive   MemberStatus = "ACTIVE"
	MemberInactive MemberStatus = "INACTIVE"
)

// Channel is the disbursement or deposit channel
type Channel string

const (
	ChannelBank  Channel = "BANK"
	ChannelGCash Channel = "GCASH"
)

// Valid checks the channel value
func (c Channel) Valid() bool {
	return c == ChannelBank || c == ChannelGCash
}

// LoanType is the loan product code
type LoanType string

const (
	LoanRegular   LoanType = "REGULAR"
	LoanQuickCash LoanType = "QUICKCASH"
)

// Valid checks the loan type value
func (t LoanType) Valid() bool {
	return t == LoanRegular || t == LoanQuickCash
}

// DueCycle is the fixed billing cycle used for due dates
const DueCycle = 30 * 24 * time.Hour

// PoolID is the primary key of the single funds pool row
const PoolID uint = 1
