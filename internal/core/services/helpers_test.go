package services

import (
	"context"
	"testing"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/adapters/persistence/testdb"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Name() string { return "mock" }

func (m *mockDispatcher) SendSettlement(ctx context.Context, notice SettlementNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *mockDispatcher) SendDueReminder(ctx context.Context, reminder DueReminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

type fixture struct {
	t          *testing.T
	ctx        context.Context
	repos      repositories.Repos
	requests   *RequestService
	settlement *SettlementService
	cron       *CronService
	notifier   *NotificationService
	dispatcher *mockDispatcher
	now        time.Time
}

// newFixture opens a fresh database holding a pool of 50000 and both loan products
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.Open(t)
	repos := repositories.NewRepos(db)
	uow := repositories.NewUnitOfWork(db)
	ctx := context.Background()
	logger := zap.NewNop()

	require.NoError(t, repos.Pool.Ensure(ctx, dec("50000")))
	require.NoError(t, repos.LoanTypes.Create(ctx, &models.LoanType{
		Code: string(domain.LoanRegular), Name: "Regular Loan",
		MonthlyRate: dec("0.02"), ProcessingFeeRate: dec("0.01"),
		MinTerm: 1, MaxTerm: 24, MaxAmount: decimal.Zero, IsActive: true,
	}))
	require.NoError(t, repos.LoanTypes.Create(ctx, &models.LoanType{
		Code: string(domain.LoanQuickCash), Name: "QuickCash",
		MonthlyRate: dec("0.03"), ProcessingFeeRate: dec("0.02"),
		MinTerm: 1, MaxTerm: 3, MaxAmount: dec("5000"), IsActive: true,
	}))

	dispatcher := &mockDispatcher{}
	notifier := NewNotificationService(logger, dispatcher)
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	f := &fixture{
		t:          t,
		ctx:        ctx,
		repos:      repos,
		requests:   NewRequestService(repos, logger),
		settlement: NewSettlementService(uow, notifier, logger),
		cron:       NewCronService(CronConfig{AccrualSpec: "0 1 * * *", ReminderSpec: "30 8 * * *", ReminderDays: 3}, uow, repos, notifier, logger),
		notifier:   notifier,
		dispatcher: dispatcher,
		now:        now,
	}
	clock := func() time.Time { return f.now }
	f.requests.now = clock
	f.settlement.now = clock
	f.cron.now = clock
	return f
}

// expectAnySettlement lets notices through without asserting on them
func (f *fixture) expectAnySettlement() {
	f.dispatcher.On("SendSettlement", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) addMember(id, balance string) *models.Member {
	f.t.Helper()
	m := &models.Member{
		MemberID:             id,
		FirstName:            "Juan",
		LastName:             "Dela Cruz",
		Email:                id + "@coop.test",
		Balance:              dec(balance),
		OutstandingLoanTotal: decimal.Zero,
		Status:               domain.MemberActive,
	}
	require.NoError(f.t, f.repos.Members.Create(f.ctx, m))
	return m
}

func (f *fixture) addLoan(memberID, principal, interest, monthly string) *models.LoanAccount {
	f.t.Helper()
	loan := &models.LoanAccount{
		MemberID:       memberID,
		TransactionID:  "LOAN-" + memberID,
		LoanType:       domain.LoanRegular,
		Principal:      dec(principal),
		InterestDue:    dec(interest),
		MonthlyPayment: dec(monthly),
		MonthlyRate:    dec("0.02"),
		Term:           6,
		DueDateMonth:   f.now.Add(10 * 24 * time.Hour),
		DueDateTerm:    f.now.Add(6 * domain.DueCycle),
	}
	require.NoError(f.t, f.repos.Loans.Create(f.ctx, loan))

	m, err := f.repos.Members.GetByID(f.ctx, memberID)
	require.NoError(f.t, err)
	m.OutstandingLoanTotal = dec(principal)
	require.NoError(f.t, f.repos.Members.Save(f.ctx, m))
	return loan
}

// enqueue stores a pending request directly, skipping submission checks
func (f *fixture) enqueue(memberID, txID string, kind domain.Kind, amount string) *models.TransactionRequest {
	f.t.Helper()
	req := &models.TransactionRequest{
		MemberID:      memberID,
		TransactionID: txID,
		Kind:          kind,
		Amount:        dec(amount),
		DateApplied:   f.now,
	}
	if kind == domain.KindLoanApplication {
		req.Term = 6
		req.LoanType = domain.LoanRegular
		req.Channel = domain.ChannelBank
	}
	require.NoError(f.t, f.repos.Requests.Enqueue(f.ctx, req))
	return req
}

func (f *fixture) approve(memberID, txID string) (*SettlementResult, error) {
	return f.settlement.Settle(f.ctx, SettleInput{MemberID: memberID, TransactionID: txID, Decision: domain.DecisionApprove, DecidedBy: "admin"})
}

func (f *fixture) reject(memberID, txID string) (*SettlementResult, error) {
	return f.settlement.Settle(f.ctx, SettleInput{MemberID: memberID, TransactionID: txID, Decision: domain.DecisionReject, DecidedBy: "admin"})
}

func (f *fixture) member(id string) *models.Member {
	f.t.Helper()
	m, err := f.repos.Members.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return m
}

func (f *fixture) pool() string {
	f.t.Helper()
	p, err := f.repos.Pool.Get(f.ctx)
	require.NoError(f.t, err)
	return p.Total.StringFixed(2)
}

func (f *fixture) loan(memberID string) *models.LoanAccount {
	f.t.Helper()
	l, err := f.repos.Loans.GetByMemberID(f.ctx, memberID)
	require.NoError(f.t, err)
	return l
}

func (f *fixture) state(memberID, txID string) domain.RequestState {
	f.t.Helper()
	req, err := f.repos.Requests.GetByKey(f.ctx, memberID, txID)
	require.NoError(f.t, err)
	return req.State
}
