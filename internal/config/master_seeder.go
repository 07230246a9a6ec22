package config

import (
	"errors"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/core/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedMasterData seeds the funds pool row and loan products
func SeedMasterData(db *gorm.DB, seed SeedConfig, log *zap.Logger) error {
	// Seed Funds Pool
	if err := seedFundsPool(db, seed, log); err != nil {
		return err
	}

	// Seed Loan Types
	if err := seedLoanTypes(db, seed, log); err != nil {
		return err
	}

	log.Info("master data seeded")
	return nil
}

func seedFundsPool(db *gorm.DB, seed SeedConfig, log *zap.Logger) error {
	var existing models.FundsPool
	err := db.First(&existing, domain.PoolID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	pool := models.FundsPool{ID: domain.PoolID, Total: seed.PoolInitial}
	if err := db.Create(&pool).Error; err != nil {
		return err
	}
	log.Info("created funds pool", zap.String("total", pool.Total.StringFixed(2)))
	return nil
}

func seedLoanTypes(db *gorm.DB, seed SeedConfig, log *zap.Logger) error {
	loanTypes := []models.LoanType{
		{
			Code:              string(domain.LoanRegular),
			Name:              "Regular Loan",
			Description:       "Standard member loan, interest and processing fee deducted on release",
			MonthlyRate:       seed.RegularMonthlyRate,
			ProcessingFeeRate: seed.RegularFeeRate,
			MinTerm:           1,
			MaxTerm:           seed.RegularMaxTerm,
			MaxAmount:         decimal.Zero,
			IsActive:          true,
		},
		{
			Code:              string(domain.LoanQuickCash),
			Name:              "QuickCash",
			Description:       "Short-term capped loan",
			MonthlyRate:       seed.QuickCashMonthlyRate,
			ProcessingFeeRate: seed.QuickCashFeeRate,
			MinTerm:           1,
			MaxTerm:           seed.QuickCashMaxTerm,
			MaxAmount:         seed.QuickCashMaxAmount,
			IsActive:          true,
		},
	}

	for _, lt := range loanTypes {
		lt := lt
		var existing models.LoanType
		err := db.Where("code = ?", lt.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&lt).Error; err != nil {
				return err
			}
			log.Info("created loan_type", zap.String("code", lt.Code))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
