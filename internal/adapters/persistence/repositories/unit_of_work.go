package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repos bundles every repository bound to the same database handle
type Repos struct {
	Members   MemberRepository
	Loans     LoanRepository
	Requests  RequestRepository
	Ledger    LedgerRepository
	Pool      PoolRepository
	LoanTypes LoanTypeRepository
}

// NewRepos binds all repositories to db, which may be a transaction
func NewRepos(db *gorm.DB) Repos {
	return Repos{
		Members:   NewMemberRepository(db),
		Loans:     NewLoanRepository(db),
		Requests:  NewRequestRepository(db),
		Ledger:    NewLedgerRepository(db),
		Pool:      NewPoolRepository(db),
		LoanTypes: NewLoanTypeRepository(db),
	}
}

// UnitOfWork runs fn with repositories scoped to one transaction.
// Returning an error from fn rolls back every write made through r.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a transaction runner over db
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}
