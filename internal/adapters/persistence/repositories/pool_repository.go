package repositories

import (
	"context"
	"errors"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrPoolMissing is returned when the funds pool row has not been seeded
var ErrPoolMissing = errors.New("funds pool row missing")

// poolRepository implements PoolRepository interface
type poolRepository struct {
	db *gorm.DB
}

// NewPoolRepository creates a new funds pool repository
func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &poolRepository{db: db}
}

// Ensure creates the pool row with the initial total if it does not exist
func (r *poolRepository) Ensure(ctx context.Context, initial decimal.Decimal) error {
	pool := models.FundsPool{ID: domain.PoolID, Total: initial, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Where(models.FundsPool{ID: domain.PoolID}).
		FirstOrCreate(&pool).Error
}

// Get reads the current pool total
func (r *poolRepository) Get(ctx context.Context) (*models.FundsPool, error) {
	var pool models.FundsPool
	err := r.db.WithContext(ctx).First(&pool, domain.PoolID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPoolMissing
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// Adjust adds delta (negative for outflows) in a single UPDATE so concurrent
// approvals for different members never lose an update.
func (r *poolRepository) Adjust(ctx context.Context, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.FundsPool{}).
		Where("id = ?", domain.PoolID).
		Updates(map[string]interface{}{
			"total":      gorm.Expr("total + CAST(? AS DECIMAL(15,2))", delta.StringFixed(2)),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPoolMissing
	}
	return nil
}
