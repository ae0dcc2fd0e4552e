package postgres_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "una migración %s", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrations_TodasTienenUpYDown(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", m)
		assert.Contains(t, string(data), "-- +goose Down", m)
	}
}

func TestMigrations_Catalogo(t *testing.T) {
	content := readMigration(t, "create_catalog")
	for _, sub := range []string{
		"CONSTRAINT materials_supplier_name_key UNIQUE (supplier, name)",
		"FOREIGN KEY (material_id) REFERENCES materials(id) ON DELETE RESTRICT",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (price_status IN ('available', 'consultar'))",
		"DROP TABLE IF EXISTS materials",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestMigrations_VentasEInventario(t *testing.T) {
	content := readMigration(t, "create_inventory_and_sales")
	for _, sub := range []string{
		"material_id    UUID NOT NULL UNIQUE",
		"FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE",
		"CHECK ((product_id IS NULL) <> (reseller_product_id IS NULL))",
		"DROP TABLE IF EXISTS sale_items",
	} {
		assert.Contains(t, content, sub)
	}
	assert.False(t, strings.Contains(content, "CHECK (quantity >= 0)"), "el inventario puede quedar negativo")
}

func TestMigrations_Gastos(t *testing.T) {
	content := readMigration(t, "create_expenses")
	assert.Contains(t, content, "FOREIGN KEY (related_expense_id) REFERENCES expenses(id) ON DELETE RESTRICT")
	assert.Contains(t, content, "CHECK (amount > 0)")
}
