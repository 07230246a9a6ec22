package repositories

import (
	"context"
	"errors"
	"time"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ErrVersionConflict is returned when an optimistic version check fails
var ErrVersionConflict = errors.New("record was modified concurrently")

// MemberRepository defines member account repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, memberID string) (*models.Member, error)
	GetForUpdate(ctx context.Context, memberID string) (*models.Member, error)
	Save(ctx context.Context, member *models.Member) error
	List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
}

// LoanRepository defines loan register repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.LoanAccount) error
	GetByMemberID(ctx context.Context, memberID string) (*models.LoanAccount, error)
	GetByMemberForUpdate(ctx context.Context, memberID string) (*models.LoanAccount, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.LoanAccount, error)
	Update(ctx context.Context, loan *models.LoanAccount) error
	Delete(ctx context.Context, id uint) error
	ListDueBefore(ctx context.Context, before time.Time) ([]*models.LoanAccount, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.LoanAccount, error)
	Stats(ctx context.Context) (count int64, principal decimal.Decimal, err error)
}

// RequestRepository defines the pending request queue interface
type RequestRepository interface {
	Enqueue(ctx context.Context, req *models.TransactionRequest) error
	Take(ctx context.Context, memberID, transactionID string, next domain.RequestState, decidedBy string, at time.Time) (*models.TransactionRequest, error)
	GetByKey(ctx context.Context, memberID, transactionID string) (*models.TransactionRequest, error)
	ListPending(ctx context.Context, kind domain.Kind, offset, limit int) ([]*models.TransactionRequest, int64, error)
	ListByMember(ctx context.Context, memberID string, offset, limit int) ([]*models.TransactionRequest, int64, error)
	CountPendingByKind(ctx context.Context) (map[domain.Kind]int64, error)
}

// LedgerRepository defines the append-only ledger interface
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	GetByKey(ctx context.Context, kind domain.Kind, memberID, transactionID string) (*models.LedgerEntry, error)
	ListByMember(ctx context.Context, memberID string, offset, limit int) ([]*models.LedgerEntry, int64, error)
	SummarizeSince(ctx context.Context, since time.Time) ([]LedgerSummary, error)
}

// LedgerSummary aggregates settled entries per kind and status
type LedgerSummary struct {
	Kind   domain.Kind         `json:"kind"`
	Status domain.RequestState `json:"status"`
	Count  int64               `json:"count"`
	Total  decimal.Decimal     `json:"total"`
}

// PoolRepository defines funds pool repository interface
type PoolRepository interface {
	Ensure(ctx context.Context, initial decimal.Decimal) error
	Get(ctx context.Context) (*models.FundsPool, error)
	Adjust(ctx context.Context, delta decimal.Decimal) error
}

// LoanTypeRepository defines loan type master repository interface
type LoanTypeRepository interface {
	Create(ctx context.Context, loanType *models.LoanType) error
	GetByID(ctx context.Context, id uint) (*models.LoanType, error)
	GetByCode(ctx context.Context, code string) (*models.LoanType, error)
	List(ctx context.Context) ([]*models.LoanType, error)
	Update(ctx context.Context, loanType *models.LoanType) error
}
