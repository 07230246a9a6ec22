package services

import (
	"context"
	"errors"
	"time"

	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/core/domain"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CronConfig holds job schedules in standard 5-field cron syntax
type CronConfig struct {
	AccrualSpec  string
	ReminderSpec string
	ReminderDays int
}

// CronService runs interest accrual and due-date reminders
type CronService struct {
	cron     *cron.Cron
	cfg      CronConfig
	uow      repositories.UnitOfWork
	repos    repositories.Repos
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

// NewCronService creates a new cron service
func NewCronService(cfg CronConfig, uow repositories.UnitOfWork, repos repositories.Repos, notifier *NotificationService, logger *zap.Logger) *CronService {
	return &CronService{
		cron:     cron.New(),
		cfg:      cfg,
		uow:      uow,
		repos:    repos,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.AccrualSpec, func() {
		if _, err := s.AccrueInterest(context.Background()); err != nil {
			s.logger.Error("interest accrual failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, func() {
		if _, err := s.SendDueReminders(context.Background()); err != nil {
			s.logger.Error("due reminders failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron started",
		zap.String("accrual", s.cfg.AccrualSpec),
		zap.String("reminder", s.cfg.ReminderSpec),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cron stopped")
}

// ============================================================
// Interest accrual
// ============================================================

// AccrueInterest adds one month of interest per lapsed due cycle to every
// overdue loan. Each loan is updated in its own transaction with the row
// locked, so a concurrent payment settles either before or after it.
// Returns the number of loans updated.
func (s *CronService) AccrueInterest(ctx context.Context) (int, error) {
	now := s.now()
	loans, err := s.repos.Loans.ListDueBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, l := range loans {
		id := l.ID
		accrued := false
		err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
			loan, err := r.Loans.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}

			cycles, latest := domain.LapsedCycles(loan.DueDateMonth, loan.LastAccruedAt, now)
			if cycles == 0 {
				return nil
			}

			interest := domain.MonthlyInterest(loan.Principal, loan.MonthlyRate).Mul(decimal.NewFromInt(int64(cycles)))
			loan.InterestDue = loan.InterestDue.Add(interest)
			loan.LastAccruedAt = &latest
			if err := r.Loans.Update(ctx, loan); err != nil {
				return err
			}

			accrued = true
			s.logger.Info("interest accrued",
				zap.String("member_id", loan.MemberID),
				zap.Uint("loan_id", loan.ID),
				zap.Int("cycles", cycles),
				zap.String("interest", interest.StringFixed(2)),
				zap.String("interest_due", loan.InterestDue.StringFixed(2)),
			)
			return nil
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// paid off since the listing
			continue
		}
		if err != nil {
			s.logger.Error("accrue loan failed", zap.Uint("loan_id", id), zap.Error(err))
			continue
		}
		if accrued {
			updated++
		}
	}
	return updated, nil
}

// ============================================================
// Due reminders
// ============================================================

// SendDueReminders notifies members whose monthly due date falls within the
// reminder window. Returns the number of reminders handed to the notifier.
func (s *CronService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now()
	until := now.Add(time.Duration(s.cfg.ReminderDays) * 24 * time.Hour)

	loans, err := s.repos.Loans.ListDueBetween(ctx, now, until)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, loan := range loans {
		member, err := s.repos.Members.GetByID(ctx, loan.MemberID)
		if err != nil {
			s.logger.Warn("due reminder skipped", zap.String("member_id", loan.MemberID), zap.Error(err))
			continue
		}

		s.notifier.NotifyDue(DueReminder{
			MemberID:       loan.MemberID,
			TransactionID:  loan.TransactionID,
			MonthlyPayment: loan.MonthlyPayment,
			InterestDue:    loan.InterestDue,
			Principal:      loan.Principal,
			DueDate:        loan.DueDateMonth,
			FirstName:      member.FirstName,
			LastName:       member.LastName,
			Email:          member.Email,
		})
		sent++
	}
	return sent, nil
}
