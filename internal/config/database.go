package config

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// ConnectDatabase opens the database selected by DB_DRIVER
func ConnectDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := openDialector(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger based on mode
	var gormLogger logger.Interface
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	// Open connection
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true, // Better performance
		TranslateError:         true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Connection pool settings
	if cfg.Database.Driver == "sqlite" {
		// single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set global DB instance
	DB = db

	log.Info("database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.DBName),
	)
	return db, nil
}

func openDialector(d DatabaseConfig) (gorm.Dialector, error) {
	switch d.Driver {
	case "mysql":
		return mysql.Open(buildMySQLDSN(d)), nil
	case "postgres":
		return postgres.New(postgres.Config{DSN: buildPostgresDSN(d)}), nil
	case "sqlite":
		return sqlite.Open(d.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

// buildMySQLDSN returns the MySQL connection string
func buildMySQLDSN(d DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}

// buildPostgresDSN returns the PostgreSQL connection string
func buildPostgresDSN(d DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
