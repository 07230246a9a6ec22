package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestService validates member submissions and queues them as pending
type RequestService struct {
	repos  repositories.Repos
	logger *zap.Logger
	now    func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(repos repositories.Repos, logger *zap.Logger) *RequestService {
	return &RequestService{
		repos:  repos,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ============================================================
// Inputs
// ============================================================

// DepositInput represents a deposit submission
type DepositInput struct {
	MemberID      string          `json:"member_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount_to_be_deposited"`
	DepositOption domain.Channel  `json:"deposit_option"`
	AccountNumber string          `json:"account_number"`
	ProofURL      string          `json:"proof_of_deposit_url"`
}

// WithdrawalInput represents a withdrawal submission
type WithdrawalInput struct {
	MemberID       string          `json:"member_id"`
	TransactionID  string          `json:"transaction_id"`
	Amount         decimal.Decimal `json:"amount_withdrawn"`
	WithdrawOption domain.Channel  `json:"withdraw_option"`
	AccountName    string          `json:"account_name"`
	AccountNumber  string          `json:"account_number"`
}

// LoanApplicationInput represents a loan application
type LoanApplicationInput struct {
	MemberID      string          `json:"member_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"loan_amount"`
	Term          int             `json:"term"`
	LoanType      domain.LoanType `json:"loan_type"`
	Disbursement  domain.Channel  `json:"disbursement"`
	AccountName   string          `json:"account_name"`
	AccountNumber string          `json:"account_number"`
}

// LoanPaymentInput represents a loan payment submission
type LoanPaymentInput struct {
	MemberID      string          `json:"member_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount_to_be_paid"`
}

// MembershipWithdrawalInput represents a request to leave the cooperative
type MembershipWithdrawalInput struct {
	MemberID      string `json:"member_id"`
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

// ============================================================
// Submit
// ============================================================

// SubmitDeposit queues a deposit
func (s *RequestService) SubmitDeposit(ctx context.Context, input *DepositInput) (*models.TransactionRequest, error) {
	if err := requireAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.DepositOption.Valid() {
		return nil, fmt.Errorf("%w: deposit_option must be BANK or GCASH", domain.ErrInvalidInput)
	}
	if _, err := s.activeMember(ctx, input.MemberID); err != nil {
		return nil, err
	}

	return s.enqueue(ctx, &models.TransactionRequest{
		MemberID:      input.MemberID,
		TransactionID: input.TransactionID,
		Kind:          domain.KindDeposit,
		Amount:        input.Amount,
		Channel:       input.DepositOption,
		AccountNumber: strings.TrimSpace(input.AccountNumber),
		ProofURL:      strings.TrimSpace(input.ProofURL),
	})
}

// SubmitWithdrawal queues a withdrawal; the amount may not exceed the current balance
func (s *RequestService) SubmitWithdrawal(ctx context.Context, input *WithdrawalInput) (*models.TransactionRequest, error) {
	if err := requireAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.WithdrawOption.Valid() {
		return nil, fmt.Errorf("%w: withdraw_option must be BANK or GCASH", domain.ErrInvalidInput)
	}
	if err := requireAccount(input.AccountName, input.AccountNumber); err != nil {
		return nil, err
	}

	member, err := s.activeMember(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if member.Balance.LessThan(input.Amount) {
		return nil, fmt.Errorf("%w: balance %s is less than withdrawal %s",
			domain.ErrInsufficientFunds, member.Balance.StringFixed(2), input.Amount.StringFixed(2))
	}

	return s.enqueue(ctx, &models.TransactionRequest{
		MemberID:      input.MemberID,
		TransactionID: input.TransactionID,
		Kind:          domain.KindWithdrawal,
		Amount:        input.Amount,
		Channel:       input.WithdrawOption,
		AccountName:   strings.TrimSpace(input.AccountName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
	})
}

// SubmitLoanApplication queues a loan application after pricing it against the loan type
func (s *RequestService) SubmitLoanApplication(ctx context.Context, input *LoanApplicationInput) (*models.TransactionRequest, error) {
	if err := requireAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.LoanType.Valid() {
		return nil, fmt.Errorf("%w: loan_type must be REGULAR or QUICKCASH", domain.ErrInvalidInput)
	}
	if !input.Disbursement.Valid() {
		return nil, fmt.Errorf("%w: disbursement must be BANK or GCASH", domain.ErrInvalidInput)
	}
	if err := requireAccount(input.AccountName, input.AccountNumber); err != nil {
		return nil, err
	}

	loanType, err := s.repos.LoanTypes.GetByCode(ctx, string(input.LoanType))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: loan type %s is not offered", domain.ErrInvalidInput, input.LoanType)
	}
	if err != nil {
		return nil, err
	}
	if _, err := domain.ComputeLoanTerms(input.Amount, input.Term, loanType.Policy(), s.now()); err != nil {
		return nil, err
	}

	member, err := s.activeMember(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLoan(ctx, member.MemberID, false); err != nil {
		return nil, err
	}

	return s.enqueue(ctx, &models.TransactionRequest{
		MemberID:      input.MemberID,
		TransactionID: input.TransactionID,
		Kind:          domain.KindLoanApplication,
		Amount:        input.Amount,
		Term:          input.Term,
		LoanType:      input.LoanType,
		Channel:       input.Disbursement,
		AccountName:   strings.TrimSpace(input.AccountName),
		AccountNumber: strings.TrimSpace(input.AccountNumber),
	})
}

// SubmitLoanPayment queues a payment against the member's active loan
func (s *RequestService) SubmitLoanPayment(ctx context.Context, input *LoanPaymentInput) (*models.TransactionRequest, error) {
	if err := requireAmount(input.Amount); err != nil {
		return nil, err
	}
	member, err := s.activeMember(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLoan(ctx, member.MemberID, true); err != nil {
		return nil, err
	}

	return s.enqueue(ctx, &models.TransactionRequest{
		MemberID:      input.MemberID,
		TransactionID: input.TransactionID,
		Kind:          domain.KindLoanPayment,
		Amount:        input.Amount,
	})
}

// SubmitMembershipWithdrawal queues a membership withdrawal; the member may not hold a loan
func (s *RequestService) SubmitMembershipWithdrawal(ctx context.Context, input *MembershipWithdrawalInput) (*models.TransactionRequest, error) {
	member, err := s.activeMember(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if err := s.requireLoan(ctx, member.MemberID, false); err != nil {
		return nil, err
	}

	return s.enqueue(ctx, &models.TransactionRequest{
		MemberID:      input.MemberID,
		TransactionID: input.TransactionID,
		Kind:          domain.KindMembershipWithdrawal,
		Amount:        member.Balance,
		Reason:        strings.TrimSpace(input.Reason),
	})
}

// ============================================================
// Queries
// ============================================================

// ListPending lists pending requests for the admin review tables
func (s *RequestService) ListPending(ctx context.Context, kind domain.Kind, offset, limit int) ([]*models.TransactionRequest, int64, error) {
	if kind != "" && !kind.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, kind)
	}
	return s.repos.Requests.ListPending(ctx, kind, offset, limit)
}

// ListByMember lists every request a member has submitted
func (s *RequestService) ListByMember(ctx context.Context, memberID string, offset, limit int) ([]*models.TransactionRequest, int64, error) {
	return s.repos.Requests.ListByMember(ctx, memberID, offset, limit)
}

// ============================================================
// Helpers
// ============================================================

func (s *RequestService) enqueue(ctx context.Context, req *models.TransactionRequest) (*models.TransactionRequest, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	if req.TransactionID == "" {
		req.TransactionID = uuid.NewString()
	}
	req.DateApplied = s.now()

	if err := s.repos.Requests.Enqueue(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("request submitted",
		zap.String("kind", string(req.Kind)),
		zap.String("member_id", req.MemberID),
		zap.String("transaction_id", req.TransactionID),
		zap.String("amount", req.Amount.StringFixed(2)),
	)
	return req, nil
}

func (s *RequestService) activeMember(ctx context.Context, memberID string) (*models.Member, error) {
	if strings.TrimSpace(memberID) == "" {
		return nil, fmt.Errorf("%w: member_id is required", domain.ErrInvalidInput)
	}

	member, err := s.repos.Members.GetByID(ctx, memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrInvalidState, domain.ErrMemberInactive, memberID)
	}
	return member, nil
}

// requireLoan checks whether the member holds an active loan
func (s *RequestService) requireLoan(ctx context.Context, memberID string, want bool) error {
	loan, err := s.repos.Loans.GetByMemberID(ctx, memberID)
	if err != nil {
		return err
	}
	if want && loan == nil {
		return fmt.Errorf("%w: member %s has no active loan", domain.ErrInvalidState, memberID)
	}
	if !want && loan != nil {
		return fmt.Errorf("%w: member %s has an active loan", domain.ErrInvalidState, memberID)
	}
	return nil
}

func requireAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidInput)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than 2 decimal places", domain.ErrInvalidInput)
	}
	return nil
}

func requireAccount(name, number string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(number) == "" {
		return fmt.Errorf("%w: account_name and account_number are required", domain.ErrInvalidInput)
	}
	return nil
}
