package services

import (
	"context"
	"errors"
	"fmt"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/core/domain"

	"gorm.io/gorm"
)

// LedgerService reads the settlement audit trail
type LedgerService struct {
	repos repositories.Repos
}

// NewLedgerService creates a new ledger service
func NewLedgerService(repos repositories.Repos) *LedgerService {
	return &LedgerService{repos: repos}
}

// History lists a member's settled requests newest first
func (s *LedgerService) History(ctx context.Context, memberID string, offset, limit int) ([]*models.LedgerEntry, int64, error) {
	return s.repos.Ledger.ListByMember(ctx, memberID, offset, limit)
}

// Get returns the ledger entry of one settled request
func (s *LedgerService) Get(ctx context.Context, kind domain.Kind, memberID, transactionID string) (*models.LedgerEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, kind)
	}

	entry, err := s.repos.Ledger.GetByKey(ctx, kind, memberID, transactionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no ledger entry for %s %s/%s", domain.ErrNotFound, kind, memberID, transactionID)
	}
	return entry, err
}
