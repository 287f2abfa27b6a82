package db

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmspages/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "nested", "pages.db"),
		MaxConnections: 4,
		IdleTimeoutMS:  1000,
	}
	gdb, err := Open(cfg, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		Close(gdb)
	})
	return gdb
}

func TestOpenCreatesTableAndIndexes(t *testing.T) {
	gdb := openTestDB(t)

	migrator := gdb.Migrator()
	if !migrator.HasTable("cms_pages") {
		t.Fatal("expected cms_pages table")
	}
	for _, index := range []string{"idx_store_url", "idx_store_active", "idx_created_at", "idx_title"} {
		if !migrator.HasIndex(&CmsPage{}, index) {
			t.Fatalf("expected index %s", index)
		}
	}

	if err := Ping(context.Background(), gdb); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestStoreURLUniqueIndexTranslatesDuplicate(t *testing.T) {
	gdb := openTestDB(t)

	first := CmsPage{StoreID: 1, Title: "About", Layout: "1column", URLKey: "about", IsActive: true}
	if err := gdb.Create(&first).Error; err != nil {
		t.Fatalf("failed to seed page: %v", err)
	}

	otherStore := CmsPage{StoreID: 2, Title: "About", Layout: "1column", URLKey: "about", IsActive: true}
	if err := gdb.Create(&otherStore).Error; err != nil {
		t.Fatalf("same url key in another store should be allowed: %v", err)
	}

	dup := CmsPage{StoreID: 1, Title: "About again", Layout: "1column", URLKey: "about"}
	err := gdb.Create(&dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}, logger.Silent); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestTimestampsAssignedOnCreate(t *testing.T) {
	gdb := openTestDB(t)

	page := CmsPage{StoreID: 3, Title: "FAQ", URLKey: "faq"}
	if err := gdb.Create(&page).Error; err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	if page.ID == 0 {
		t.Fatal("expected auto-increment id")
	}
	if page.CreatedAt.IsZero() || page.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be assigned")
	}
}

func TestOpenReportsMigrationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.db")

	// 同名视图占位，建表必然失败
	raw, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to prepare database: %v", err)
	}
	if err := raw.Exec("CREATE VIEW cms_pages AS SELECT 1 AS id").Error; err != nil {
		t.Fatalf("failed to create view: %v", err)
	}
	if err := Close(raw); err != nil {
		t.Fatalf("failed to close prepared database: %v", err)
	}

	gdb, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, logger.Silent)
	if err == nil {
		Close(gdb)
		t.Fatalf("expected migration error")
	}
	if gdb != nil {
		t.Fatalf("expected nil handle on failure")
	}
	if !strings.Contains(err.Error(), "migration failed") {
		t.Fatalf("expected migration failure, got %v", err)
	}
}
