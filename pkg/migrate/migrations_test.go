package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bancadosucesso/storefront-backend/pkg/migrate"
)

func TestValidateMigrationsDir(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}

func TestCatalogMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_catalog_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS subcategories",
		"CREATE TABLE IF NOT EXISTS salespeople",
		"CREATE TABLE IF NOT EXISTS products",
		"FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE",
		"CHECK (price >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_slug",
		"CREATE INDEX IF NOT EXISTS idx_products_category_is_active",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders_tables.sql")

	checks := []string{
		"CREATE SEQUENCE IF NOT EXISTS order_number_seq",
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS order_items",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"CHECK (subtotal >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationHasUnpublishedIndex(t *testing.T) {
	content := readMigration(t, "*_create_outbox_events.sql")

	if !strings.Contains(content, "WHERE published_at IS NULL") {
		t.Error("expected partial index over unpublished events")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
