package testutil

import (
	"fmt"
	"strings"
	"testing"

	"scaleplus-loyalty/pkg/kvstore"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_")

// NewTestGateway returns a key/value gateway over an in-memory SQLite
// database private to t, with kv_entries already migrated.
func NewTestGateway(t *testing.T) *kvstore.Database {
	t.Helper()

	gw, err := kvstore.NewDatabase(openTestDB(t))
	if err != nil {
		t.Fatalf("failed to migrate kv entries: %v", err)
	}
	return gw
}

// openTestDB opens the in-memory SQLite database behind NewTestGateway. The
// connection is closed when the test finishes.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", nameReplacer.Replace(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}
	// every statement shares the single in-memory database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
