package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"gorm.io/gorm"
)

// ledgerRepository implements LedgerRepository interface.
// Entries are insert-only: there is no update or delete.
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Create appends a ledger entry
func (r *ledgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: ledger entry %s %s/%s exists", domain.ErrAlreadyProcessed, entry.Kind, entry.MemberID, entry.TransactionID)
	}
	return err
}

// GetByKey gets the entry for one settled request
func (r *ledgerRepository) GetByKey(ctx context.Context, kind domain.Kind, memberID, transactionID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("kind = ? AND member_id = ? AND transaction_id = ?", kind, memberID, transactionID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByMember lists a member's history newest first
func (r *ledgerRepository) ListByMember(ctx context.Context, memberID string, offset, limit int) ([]*models.LedgerEntry, int64, error) {
	var entries []*models.LedgerEntry
	var total int64

	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("member_id = ?", memberID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

// SummarizeSince groups entries created since the given time by kind and status
func (r *ledgerRepository) SummarizeSince(ctx context.Context, since time.Time) ([]LedgerSummary, error) {
	var results []LedgerSummary
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("kind, status, COUNT(*) as count, SUM(settled_amount) as total").
		Where("created_at >= ?", since).
		Group("kind, status").
		Order("kind ASC").
		Scan(&results).Error
	return results, err
}
