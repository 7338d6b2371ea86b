package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shredstack/fuel-rx-sub006/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB opens a per-test in-memory sqlite database with the catalog
// schema migrated. Named shared-cache DSNs keep each test isolated while
// letting gorm's pooled connections see the same data.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Ingredient{}, &models.NutritionRecord{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
