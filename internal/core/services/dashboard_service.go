package services

import (
	"context"
	"time"

	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
)

// DashboardService builds the admin console summary
type DashboardService struct {
	repos repositories.Repos
	now   func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repos repositories.Repos) *DashboardService {
	return &DashboardService{
		repos: repos,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	// Liquidity
	PoolTotal decimal.Decimal `json:"pool_total"`

	// Members
	TotalMembers int64 `json:"total_members"`

	// Queue
	PendingByKind map[domain.Kind]int64 `json:"pending_by_kind"`
	TotalPending  int64                 `json:"total_pending"`

	// Loans
	ActiveLoans          int64           `json:"active_loans"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`

	// Today
	Today []repositories.LedgerSummary `json:"today"`
}

// GetAdminDashboard returns admin dashboard data
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{}

	pool, err := s.repos.Pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	data.PoolTotal = pool.Total

	_, data.TotalMembers, err = s.repos.Members.List(ctx, 0, 1)
	if err != nil {
		return nil, err
	}

	data.PendingByKind, err = s.repos.Requests.CountPendingByKind(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range data.PendingByKind {
		data.TotalPending += n
	}

	data.ActiveLoans, data.OutstandingPrincipal, err = s.repos.Loans.Stats(ctx)
	if err != nil {
		return nil, err
	}

	// Settlements since midnight UTC
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	data.Today, err = s.repos.Ledger.SummarizeSince(ctx, midnight)
	if err != nil {
		return nil, err
	}

	return data, nil
}
