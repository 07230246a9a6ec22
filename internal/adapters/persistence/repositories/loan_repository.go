package repositories

import (
	"context"
	"errors"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan account
func (r *loanRepository) Create(ctx context.Context, loan *models.LoanAccount) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByMemberID returns the member's active loan, or nil if there is none
func (r *loanRepository) GetByMemberID(ctx context.Context, memberID string) (*models.LoanAccount, error) {
	var loan models.LoanAccount
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByMemberForUpdate is GetByMemberID with a row lock
func (r *loanRepository) GetByMemberForUpdate(ctx context.Context, memberID string) (*models.LoanAccount, error) {
	var loan models.LoanAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ?", memberID).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByIDForUpdate gets a loan by ID and locks the row
func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.LoanAccount, error) {
	var loan models.LoanAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan account
func (r *loanRepository) Update(ctx context.Context, loan *models.LoanAccount) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// Delete removes a fully paid loan
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.LoanAccount{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDueBefore lists loans whose monthly due date is before the given time
func (r *loanRepository) ListDueBefore(ctx context.Context, before time.Time) ([]*models.LoanAccount, error) {
	var loans []*models.LoanAccount
	err := r.db.WithContext(ctx).
		Where("due_date_month < ?", before).
		Order("due_date_month ASC").
		Find(&loans).Error
	return loans, err
}

// ListDueBetween lists loans whose monthly due date falls in [from, to)
func (r *loanRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.LoanAccount, error) {
	var loans []*models.LoanAccount
	err := r.db.WithContext(ctx).
		Where("due_date_month >= ? AND due_date_month < ?", from, to).
		Order("due_date_month ASC").
		Find(&loans).Error
	return loans, err
}

// Stats returns the number of active loans and their total principal
func (r *loanRepository) Stats(ctx context.Context) (int64, decimal.Decimal, error) {
	var loans []*models.LoanAccount
	if err := r.db.WithContext(ctx).Select("principal").Find(&loans).Error; err != nil {
		return 0, decimal.Zero, err
	}

	total := decimal.Zero
	for _, l := range loans {
		total = total.Add(l.Principal)
	}
	return int64(len(loans)), total, nil
}
