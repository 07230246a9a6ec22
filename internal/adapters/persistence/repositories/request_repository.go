package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new transaction request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Enqueue stores a new pending request. A key that was ever used,
// pending or settled, fails with domain.ErrDuplicateRequest.
func (r *requestRepository) Enqueue(ctx context.Context, req *models.TransactionRequest) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionRequest{}).
		Where("member_id = ? AND transaction_id = ?", req.MemberID, req.TransactionID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrDuplicateRequest, req.MemberID, req.TransactionID)
	}

	req.State = domain.StatePending
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		// lost the race against a concurrent submit with the same key
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s/%s", domain.ErrDuplicateRequest, req.MemberID, req.TransactionID)
		}
		return err
	}
	return nil
}

// Take claims a pending request and moves it to its terminal state.
// The row is locked first, then updated only while still PENDING, so of two
// concurrent takers exactly one succeeds. Must run inside the settlement
// transaction so a later failure puts the request back to PENDING.
func (r *requestRepository) Take(ctx context.Context, memberID, transactionID string, next domain.RequestState, decidedBy string, at time.Time) (*models.TransactionRequest, error) {
	var req models.TransactionRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND transaction_id = ?", memberID, transactionID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrRequestNotFound, memberID, transactionID)
	}
	if err != nil {
		return nil, err
	}
	if req.State != domain.StatePending {
		return nil, fmt.Errorf("%w: %s/%s is %s", domain.ErrAlreadyProcessed, memberID, transactionID, req.State)
	}

	result := r.db.WithContext(ctx).
		Model(&models.TransactionRequest{}).
		Where("id = ? AND state = ?", req.ID, domain.StatePending).
		Updates(map[string]interface{}{
			"state":      next,
			"decided_at": at,
			"decided_by": decidedBy,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrAlreadyProcessed, memberID, transactionID)
	}

	req.State = next
	req.DecidedAt = &at
	req.DecidedBy = decidedBy
	return &req, nil
}

// GetByKey gets a request by its idempotency key
func (r *requestRepository) GetByKey(ctx context.Context, memberID, transactionID string) (*models.TransactionRequest, error) {
	var req models.TransactionRequest
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND transaction_id = ?", memberID, transactionID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPending lists pending requests oldest first, optionally filtered by kind
func (r *requestRepository) ListPending(ctx context.Context, kind domain.Kind, offset, limit int) ([]*models.TransactionRequest, int64, error) {
	var requests []*models.TransactionRequest
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("state = ?", domain.StatePending)
		if kind != "" {
			db = db.Where("kind = ?", kind)
		}
		return db
	}

	err := r.db.WithContext(ctx).Model(&models.TransactionRequest{}).Scopes(scope).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Scopes(scope).
		Order("date_applied ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error
	return requests, total, err
}

// ListByMember lists a member's requests newest first
func (r *requestRepository) ListByMember(ctx context.Context, memberID string, offset, limit int) ([]*models.TransactionRequest, int64, error) {
	var requests []*models.TransactionRequest
	var total int64

	err := r.db.WithContext(ctx).
		Model(&models.TransactionRequest{}).
		Where("member_id = ?", memberID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("date_applied DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error
	return requests, total, err
}

// CountPendingByKind returns pending counts for every kind, zero-filled
func (r *requestRepository) CountPendingByKind(ctx context.Context) (map[domain.Kind]int64, error) {
	type Result struct {
		Kind  domain.Kind
		Count int64
	}
	var results []Result

	err := r.db.WithContext(ctx).
		Model(&models.TransactionRequest{}).
		Select("kind, COUNT(*) as count").
		Where("state = ?", domain.StatePending).
		Group("kind").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Kind]int64, len(domain.Kinds))
	for _, k := range domain.Kinds {
		counts[k] = 0
	}
	for _, res := range results {
		counts[res.Kind] = res.Count
	}
	return counts, nil
}
