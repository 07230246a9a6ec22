package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcome is how a Settle call ended
type Outcome string

const (
	OutcomeSettled          Outcome = "settled"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeNotFound         Outcome = "not_found"
)

// SettleInput identifies a pending request and the admin decision on it
type SettleInput struct {
	MemberID      string
	TransactionID string
	Decision      domain.Decision
	DecidedBy     string
}

// SettlementResult is returned for settled requests and benign no-ops
type SettlementResult struct {
	Outcome         Outcome             `json:"outcome"`
	Kind            domain.Kind         `json:"kind,omitempty"`
	MemberID        string              `json:"member_id"`
	TransactionID   string              `json:"transaction_id"`
	Amount          decimal.Decimal     `json:"amount"`
	Status          domain.RequestState `json:"status,omitempty"`
	DateApproved    *time.Time          `json:"date_approved,omitempty"`
	DateRejected    *time.Time          `json:"date_rejected,omitempty"`
	FirstName       string              `json:"first_name,omitempty"`
	LastName        string              `json:"last_name,omitempty"`
	Email           string              `json:"email,omitempty"`
	LedgerReference string              `json:"ledger_reference,omitempty"`
	Entry           *models.LedgerEntry `json:"entry,omitempty"`
}

// Notice converts the result to the dispatcher payload
func (r *SettlementResult) Notice() SettlementNotice {
	return SettlementNotice{
		MemberID:      r.MemberID,
		TransactionID: r.TransactionID,
		Amount:        r.Amount,
		DateApproved:  r.DateApproved,
		DateRejected:  r.DateRejected,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Kind:          r.Kind,
	}
}

// SettlementService applies admin decisions to pending requests.
// Each Settle is one transaction over request, member, loan, pool and ledger.
type SettlementService struct {
	uow      repositories.UnitOfWork
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uow repositories.UnitOfWork, notifier *NotificationService, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		uow:      uow,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Settle approves or rejects the request keyed by (MemberID, TransactionID).
//
// A request that is missing or already decided returns a result with a
// benign outcome and a nil error. Any other failure rolls the whole
// transaction back, leaving the request pending.
func (s *SettlementService) Settle(ctx context.Context, input SettleInput) (*SettlementResult, error) {
	if !input.Decision.Valid() {
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrInvalidInput, input.Decision)
	}

	now := s.now()
	var result *SettlementResult

	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		res, err := s.settle(ctx, r, input, now)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return s.handleFailure(input, err)
	}

	s.logger.Info("request settled",
		zap.String("kind", string(result.Kind)),
		zap.String("member_id", result.MemberID),
		zap.String("transaction_id", result.TransactionID),
		zap.String("status", string(result.Status)),
		zap.String("amount", result.Amount.StringFixed(2)),
		zap.String("decided_by", input.DecidedBy),
	)

	if s.notifier != nil {
		s.notifier.NotifySettlement(result.Notice())
	}
	return result, nil
}

func (s *SettlementService) settle(ctx context.Context, r repositories.Repos, input SettleInput, now time.Time) (*SettlementResult, error) {
	// 1. Claim the request
	req, err := r.Requests.Take(ctx, input.MemberID, input.TransactionID, input.Decision.State(), input.DecidedBy, now)
	if err != nil {
		if domain.IsBenign(err) {
			return nil, err
		}
		return nil, persistenceError("take request", err)
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: request %s/%s has unknown kind %q", domain.ErrDataIntegrity, req.MemberID, req.TransactionID, req.Kind)
	}

	// 2. Lock the member
	member, err := r.Members.GetForUpdate(ctx, req.MemberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: member %s not found for request %s", domain.ErrDataIntegrity, req.MemberID, req.TransactionID)
	}
	if err != nil {
		return nil, persistenceError("load member", err)
	}

	entry := models.NewLedgerEntry(req, uuid.NewString())
	entry.Status = req.State
	entry.DecidedBy = input.DecidedBy

	// rejections report the requested amount
	amount := req.Amount
	if input.Decision == domain.DecisionReject {
		entry.DateRejected = &now
		entry.BalanceAfter = member.Balance
	} else {
		if err := s.approve(ctx, r, req, member, entry, now); err != nil {
			return nil, err
		}
		entry.DateApproved = &now
		amount = entry.SettledAmount
	}

	// 3. Write the ledger entry
	if err := r.Ledger.Create(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			return nil, err
		}
		return nil, persistenceError("write ledger entry", err)
	}

	return &SettlementResult{
		Outcome:         OutcomeSettled,
		Kind:            req.Kind,
		MemberID:        req.MemberID,
		TransactionID:   req.TransactionID,
		Amount:          amount,
		Status:          entry.Status,
		DateApproved:    entry.DateApproved,
		DateRejected:    entry.DateRejected,
		FirstName:       member.FirstName,
		LastName:        member.LastName,
		Email:           member.Email,
		LedgerReference: entry.Reference,
		Entry:           entry,
	}, nil
}

// approve runs the kind handler and applies its plan on the open transaction
func (s *SettlementService) approve(ctx context.Context, r repositories.Repos, req *models.TransactionRequest, member *models.Member, entry *models.LedgerEntry, now time.Time) error {
	if !member.IsActive() {
		return fmt.Errorf("%w: %w: %s", domain.ErrInvalidState, domain.ErrMemberInactive, member.MemberID)
	}

	loan, err := r.Loans.GetByMemberForUpdate(ctx, member.MemberID)
	if err != nil {
		return persistenceError("load loan", err)
	}

	in := settlementInput{req: req, member: member, loan: loan, now: now}
	if req.Kind == domain.KindLoanApplication {
		loanType, err := r.LoanTypes.GetByCode(ctx, string(req.LoanType))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: loan type %s no longer offered", domain.ErrInvalidState, req.LoanType)
		}
		if err != nil {
			return persistenceError("load loan type", err)
		}
		policy := loanType.Policy()
		in.policy = &policy
	}

	handler := settlementHandlers[req.Kind]
	plan, err := handler(in)
	if err != nil {
		return err
	}

	// member
	member.Balance = plan.balance
	member.OutstandingLoanTotal = plan.outstanding
	member.Status = plan.status
	if err := r.Members.Save(ctx, member); err != nil {
		return persistenceError("save member", err)
	}

	// loan register
	switch {
	case plan.createLoan != nil:
		err = r.Loans.Create(ctx, plan.createLoan)
	case plan.updateLoan != nil:
		err = r.Loans.Update(ctx, plan.updateLoan)
	case plan.deleteLoan != nil:
		err = r.Loans.Delete(ctx, plan.deleteLoan.ID)
	}
	if err != nil {
		return persistenceError("write loan", err)
	}

	// pool
	if !plan.poolDelta.IsZero() {
		if err := r.Pool.Adjust(ctx, plan.poolDelta); err != nil {
			if errors.Is(err, repositories.ErrPoolMissing) {
				return fmt.Errorf("%w: %w", domain.ErrDataIntegrity, err)
			}
			return persistenceError("adjust pool", err)
		}
	}

	entry.SettledAmount = plan.settled
	entry.Interest = plan.interest
	entry.ProcessingFee = plan.processingFee
	entry.ReleaseAmount = plan.release
	entry.InterestPaid = plan.interestPaid
	entry.PrincipalPaid = plan.principalPaid
	entry.Discarded = plan.discarded
	entry.PoolDelta = plan.poolDelta
	entry.BalanceAfter = member.Balance
	return nil
}

func (s *SettlementService) handleFailure(input SettleInput, err error) (*SettlementResult, error) {
	fields := []zap.Field{
		zap.String("member_id", input.MemberID),
		zap.String("transaction_id", input.TransactionID),
		zap.String("decision", string(input.Decision)),
		zap.String("decided_by", input.DecidedBy),
	}

	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		s.logger.Info("settle: request not found", fields...)
		return &SettlementResult{Outcome: OutcomeNotFound, MemberID: input.MemberID, TransactionID: input.TransactionID}, nil
	case errors.Is(err, domain.ErrAlreadyProcessed):
		s.logger.Info("settle: request already processed", fields...)
		return &SettlementResult{Outcome: OutcomeAlreadyProcessed, MemberID: input.MemberID, TransactionID: input.TransactionID}, nil
	case domain.IsFatal(err):
		s.logger.Error("settle failed", append(fields, zap.Error(err))...)
	default:
		s.logger.Warn("settle rejected", append(fields, zap.Error(err))...)
	}
	return nil, err
}

// persistenceError wraps a storage failure unless it already carries a domain error
func persistenceError(op string, err error) error {
	if errors.Is(err, domain.ErrDataIntegrity) || errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
