package repositories

import (
	"context"

	"spsc-coopfund/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanTypeRepository handles loan type master data access
type loanTypeRepository struct {
	db *gorm.DB
}

// NewLoanTypeRepository creates a new loan type repository
func NewLoanTypeRepository(db *gorm.DB) LoanTypeRepository {
	return &loanTypeRepository{db: db}
}

// Create creates a new loan type
func (r *loanTypeRepository) Create(ctx context.Context, loanType *models.LoanType) error {
	return r.db.WithContext(ctx).Create(loanType).Error
}

// GetByID gets a loan type by ID
func (r *loanTypeRepository) GetByID(ctx context.Context, id uint) (*models.LoanType, error) {
	var loanType models.LoanType
	if err := r.db.WithContext(ctx).First(&loanType, id).Error; err != nil {
		return nil, err
	}
	return &loanType, nil
}

// GetByCode gets an active loan type by code
func (r *loanTypeRepository) GetByCode(ctx context.Context, code string) (*models.LoanType, error) {
	var loanType models.LoanType
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&loanType).Error
	if err != nil {
		return nil, err
	}
	return &loanType, nil
}

// List lists all active loan types
func (r *loanTypeRepository) List(ctx context.Context) ([]*models.LoanType, error) {
	var loanTypes []*models.LoanType
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("code ASC").Find(&loanTypes).Error
	return loanTypes, err
}

// Update updates a loan type
func (r *loanTypeRepository) Update(ctx context.Context, loanType *models.LoanType) error {
	return r.db.WithContext(ctx).Save(loanType).Error
}
