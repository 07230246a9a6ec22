package config

import (
	"fmt"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
	log *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config, log *zap.Logger) *Seeder {
	return &Seeder{db: db, cfg: cfg, log: log}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	s.log.Info("running database seeders")

	if err := SeedMasterData(s.db, s.cfg.Seed, s.log); err != nil {
		return err
	}

	if s.cfg.Seed.DemoMembers {
		if err := s.seedDemoMembers(); err != nil {
			s.log.Warn("demo member seeder skipped", zap.Error(err))
		}
	}

	s.log.Info("database seeding completed")
	return nil
}

// seedDemoMembers seeds member accounts for development.
// In production members are created by registration approval.
func (s *Seeder) seedDemoMembers() error {
	var count int64
	if err := s.db.Model(&models.Member{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	demo := []struct {
		first, last string
		balance     int64
	}{
		{"Maria", "Santos", 25000},
		{"Jose", "Reyes", 8000},
		{"Ana", "Cruz", 1500},
	}

	for i, d := range demo {
		member := &models.Member{
			MemberID:             fmt.Sprintf("DEV-%04d", i+1),
			FirstName:            d.first,
			LastName:             d.last,
			Email:                fmt.Sprintf("member%d@coopfund.dev", i+1),
			Balance:              decimal.NewFromInt(d.balance),
			OutstandingLoanTotal: decimal.Zero,
			Status:               domain.MemberActive,
			Version:              1,
		}
		if err := s.db.Create(member).Error; err != nil {
			return err
		}
		s.log.Info("created demo member", zap.String("member_id", member.MemberID))
	}
	return nil
}
