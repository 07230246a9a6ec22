package repositories

import (
	"context"

	"spsc-coopfund/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member account
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.Version == 0 {
		member.Version = 1
	}
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by member ID
func (r *memberRepository) GetByID(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetForUpdate gets a member and locks the row until the transaction ends
func (r *memberRepository) GetForUpdate(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ?", memberID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Save writes balances and status guarded by the version read earlier.
// On success member.Version is advanced.
func (r *memberRepository) Save(ctx context.Context, member *models.Member) error {
	result := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("member_id = ? AND version = ?", member.MemberID, member.Version).
		Updates(map[string]interface{}{
			"balance":                member.Balance,
			"outstanding_loan_total": member.OutstandingLoanTotal,
			"status":                 member.Status,
			"version":                member.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	member.Version++
	return nil
}

// List lists members with pagination
func (r *memberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("member_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error
	return members, total, err
}
