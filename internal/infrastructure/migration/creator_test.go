package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tehraja/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"add product images":  "add_product_images",
		"Add-Order-Channel":   "add_order_channel",
		"add__retention__idx": "add_retention_idx",
		"   spaces   ":        "spaces",
		"special!@#$chars":    "specialchars",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init schema")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	second, err := CreateMigration(dir, "add order channel")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Contains(t, second.UpPath, "000002_add_order_channel.up.sql")

	content, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "add_order_channel (down)")

	_, err = CreateMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestListMigrations_Embedded(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, uint(1), list[0].Version)
	assert.Equal(t, "init_schema", list[0].Name)

	for _, m := range list {
		_, err := migrations.FS.Open(m.DownPath)
		assert.NoError(t, err, "missing down migration for %s", m.Name)
	}
}
