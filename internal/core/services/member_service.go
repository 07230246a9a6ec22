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

// MemberService reads member accounts
type MemberService struct {
	repos repositories.Repos
}

// NewMemberService creates a new member service
func NewMemberService(repos repositories.Repos) *MemberService {
	return &MemberService{repos: repos}
}

// MemberAccount is a member with their active loan, if any
type MemberAccount struct {
	*models.Member
	Loan *models.LoanAccount `json:"loan"`
}

// Get returns the member account and active loan
func (s *MemberService) Get(ctx context.Context, memberID string) (*MemberAccount, error) {
	member, err := s.repos.Members.GetByID(ctx, memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, memberID)
	}
	if err != nil {
		return nil, err
	}

	loan, err := s.repos.Loans.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	return &MemberAccount{Member: member, Loan: loan}, nil
}

// List lists member accounts
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.repos.Members.List(ctx, offset, limit)
}
