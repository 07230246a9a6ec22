package services

import (
	"fmt"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
)

// settlementInput is everything a handler may read. Member and loan rows are
// already locked by the surrounding transaction.
type settlementInput struct {
	req    *models.TransactionRequest
	member *models.Member
	loan   *models.LoanAccount // nil when the member has no active loan
	policy *domain.LoanPolicy  // loan applications only
	now    time.Time
}

// settlementPlan is the write-set of one approval
type settlementPlan struct {
	balance     decimal.Decimal
	outstanding decimal.Decimal
	status      domain.MemberStatus
	poolDelta   decimal.Decimal

	createLoan *models.LoanAccount
	updateLoan *models.LoanAccount
	deleteLoan *models.LoanAccount

	// ledger figures
	settled       decimal.Decimal
	interest      decimal.Decimal
	processingFee decimal.Decimal
	release       decimal.Decimal
	interestPaid  decimal.Decimal
	principalPaid decimal.Decimal
	discarded     decimal.Decimal
}

// settlementHandler turns an approval into a plan without touching storage
type settlementHandler func(in settlementInput) (*settlementPlan, error)

// settlementHandlers is the single dispatch table over request kinds
var settlementHandlers = map[domain.Kind]settlementHandler{
	domain.KindDeposit:              settleDeposit,
	domain.KindWithdrawal:           settleWithdrawal,
	domain.KindLoanApplication:      settleLoanApplication,
	domain.KindLoanPayment:          settleLoanPayment,
	domain.KindMembershipWithdrawal: settleMembershipWithdrawal,
}

func newPlan(m *models.Member) *settlementPlan {
	return &settlementPlan{
		balance:       m.Balance,
		outstanding:   m.OutstandingLoanTotal,
		status:        m.Status,
		poolDelta:     decimal.Zero,
		settled:       decimal.Zero,
		interest:      decimal.Zero,
		processingFee: decimal.Zero,
		release:       decimal.Zero,
		interestPaid:  decimal.Zero,
		principalPaid: decimal.Zero,
		discarded:     decimal.Zero,
	}
}

func settleDeposit(in settlementInput) (*settlementPlan, error) {
	amount := in.req.Amount
	plan := newPlan(in.member)
	plan.balance = plan.balance.Add(amount)
	plan.poolDelta = amount
	plan.settled = amount
	return plan, nil
}

func settleWithdrawal(in settlementInput) (*settlementPlan, error) {
	amount := in.req.Amount
	if in.member.Balance.LessThan(amount) {
		return nil, fmt.Errorf("%w: balance %s is less than withdrawal %s",
			domain.ErrInsufficientFunds, in.member.Balance.StringFixed(2), amount.StringFixed(2))
	}

	plan := newPlan(in.member)
	plan.balance = plan.balance.Sub(amount)
	plan.poolDelta = amount.Neg()
	plan.settled = amount
	return plan, nil
}

func settleLoanApplication(in settlementInput) (*settlementPlan, error) {
	if in.loan != nil {
		return nil, fmt.Errorf("%w: member %s already has an active loan", domain.ErrInvalidState, in.member.MemberID)
	}
	if in.policy == nil {
		return nil, fmt.Errorf("%w: no policy for loan type %s", domain.ErrDataIntegrity, in.req.LoanType)
	}

	terms, err := domain.ComputeLoanTerms(in.req.Amount, in.req.Term, *in.policy, in.now)
	if err != nil {
		return nil, err
	}
	if in.member.Balance.LessThan(terms.Principal) {
		return nil, fmt.Errorf("%w: balance %s is less than principal %s",
			domain.ErrInsufficientFunds, in.member.Balance.StringFixed(2), terms.Principal.StringFixed(2))
	}

	plan := newPlan(in.member)
	plan.balance = plan.balance.Sub(terms.Principal)
	plan.outstanding = plan.outstanding.Add(terms.Principal)
	plan.poolDelta = terms.ReleaseAmount.Neg()
	plan.settled = terms.ReleaseAmount
	plan.interest = terms.Interest
	plan.processingFee = terms.ProcessingFee
	plan.release = terms.ReleaseAmount
	plan.createLoan = &models.LoanAccount{
		MemberID:       in.member.MemberID,
		TransactionID:  in.req.TransactionID,
		LoanType:       in.req.LoanType,
		Principal:      terms.Principal,
		InterestDue:    decimal.Zero,
		MonthlyPayment: terms.MonthlyPayment,
		MonthlyRate:    in.policy.MonthlyRate,
		Term:           terms.Term,
		DueDateMonth:   terms.DueDateMonth,
		DueDateTerm:    terms.DueDateTerm,
	}
	return plan, nil
}

func settleLoanPayment(in settlementInput) (*settlementPlan, error) {
	if in.loan == nil {
		return nil, fmt.Errorf("%w: member %s has no loan account for payment %s",
			domain.ErrDataIntegrity, in.member.MemberID, in.req.TransactionID)
	}

	alloc := domain.ApplyPayment(in.loan.Position(), in.req.Amount)

	plan := newPlan(in.member)
	plan.balance = plan.balance.Add(alloc.Excess)
	plan.outstanding = decimal.Max(decimal.Zero, plan.outstanding.Sub(alloc.PrincipalPaid))
	plan.poolDelta = alloc.Payment
	plan.settled = alloc.Payment
	plan.interestPaid = alloc.InterestPaid
	plan.principalPaid = alloc.PrincipalPaid
	plan.discarded = alloc.Discarded

	if alloc.PaidOff {
		plan.deleteLoan = in.loan
	} else {
		in.loan.ApplyPosition(alloc.After)
		plan.updateLoan = in.loan
	}
	return plan, nil
}

func settleMembershipWithdrawal(in settlementInput) (*settlementPlan, error) {
	if in.loan != nil {
		return nil, fmt.Errorf("%w: member %s still has an active loan", domain.ErrInvalidState, in.member.MemberID)
	}

	refund := in.member.Balance
	plan := newPlan(in.member)
	plan.balance = decimal.Zero
	plan.status = domain.MemberInactive
	plan.poolDelta = refund.Neg()
	plan.settled = refund
	return plan, nil
}
