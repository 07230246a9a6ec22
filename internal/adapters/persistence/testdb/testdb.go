// Package testdb opens throwaway in-memory databases for package tests.
package testdb

import (
	"fmt"
	"testing"

	"spsc-coopfund/internal/adapters/persistence/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database private to t.
//
// The pool is capped at one connection so the in-memory database survives
// for the whole test and concurrent transactions are serialized. Code under
// test must therefore never use the outer handle while a transaction is open.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
