package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

const testModel = `
entities:
  - name: Order
    table: orders
    properties:
      - name: ID
        column: id
        type: bigint
        primary_key: true
      - name: Customer
        column: customer
        type: text
      - name: Total
        column: total
        type: numeric(10,2)
`

func resetLoadFlags() {
	loadFlags = loadFlagValues{timeout: pgbulk.DefaultLoadTimeout}
}

// projectDir creates a working directory with a model file and switches to it.
func projectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.yaml"), []byte(testModel), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.csv"), []byte("Customer,Total\nada,10.50\n"), 0o644))
	t.Chdir(dir)
	for _, env := range []string{"DATABASE_URL", "PGHOST", "PGPORT", "PGDATABASE", "PGSSLMODE", "AZURE_TENANT_ID", "AZURE_CLIENT_ID"} {
		t.Setenv(env, "")
	}
	return dir
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{})
	require.Error(t, err)
	assert.Equal(t, pgbulk.ExitUsageError, pgbulk.ExitCodeForError(err))

	err = loadCmd.Args(loadCmd, []string{"a.csv", "b.csv"})
	require.Error(t, err)
	assert.Equal(t, pgbulk.ExitUsageError, pgbulk.ExitCodeForError(err))
}

func TestBuildLoadConfig_DryRunNeedsNoConnection(t *testing.T) {
	resetLoadFlags()
	projectDir(t)
	loadFlags.table = "orders"
	loadFlags.model = "model.yaml"
	loadFlags.dryRun = true

	cfg, err := buildLoadConfig(loadCmd, "orders.csv", false)
	require.NoError(t, err)
	assert.Nil(t, cfg.Connection)
	assert.Equal(t, pgbulk.DefaultSchema, cfg.Schema)
	assert.Equal(t, pgbulk.DefaultLoadTimeout, cfg.Timeout)
}

func TestBuildLoadConfig_ProjectConfigDefaults(t *testing.T) {
	resetLoadFlags()
	dir := projectDir(t)
	cfgFile := `
connection:
  host: db.internal
  database: shop
load:
  model: model.yaml
  schema: sales
timeout: 90s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pgbulk.yaml"), []byte(cfgFile), 0o644))
	loadFlags.table = "orders"

	cfg, err := buildLoadConfig(loadCmd, "orders.csv", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".", "model.yaml"), cfg.ModelPath)
	assert.Equal(t, "sales", cfg.Schema)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	require.NotNil(t, cfg.Connection)
	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, "shop", cfg.Connection.Database)
}

func TestBuildLoadConfig_FlagsOverrideProjectConfig(t *testing.T) {
	resetLoadFlags()
	dir := projectDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pgbulk.yaml"),
		[]byte("load:\n  schema: sales\n"), 0o644))
	loadFlags.table = "orders"
	loadFlags.schema = "archive"
	loadFlags.model = "model.yaml"
	loadFlags.conn.connection = "postgresql://loader@localhost:5432/shop"

	cfg, err := buildLoadConfig(loadCmd, "orders.csv", false)
	require.NoError(t, err)
	assert.Equal(t, "archive", cfg.Schema)
	assert.Equal(t, "loader", cfg.Connection.Username)
}

func TestBuildLoadConfig_MissingModel(t *testing.T) {
	resetLoadFlags()
	projectDir(t)
	loadFlags.table = "orders"
	loadFlags.dryRun = true

	_, err := buildLoadConfig(loadCmd, "orders.csv", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgbulk.ErrInvalidConfig))
	assert.Equal(t, pgbulk.ExitConfigError, pgbulk.ExitCodeForError(err))
}

func TestBuildLoadConfig_ConflictingConnectionFlags(t *testing.T) {
	resetLoadFlags()
	projectDir(t)
	loadFlags.table = "orders"
	loadFlags.model = "model.yaml"
	loadFlags.conn.connection = "postgresql://localhost/shop"
	loadFlags.conn.host = "other"

	_, err := buildLoadConfig(loadCmd, "orders.csv", false)
	assert.ErrorIs(t, err, pgbulk.ErrInvalidConfig)
}

func TestRunLoad_DryRun(t *testing.T) {
	resetLoadFlags()
	projectDir(t)
	loadFlags.table = "orders"
	loadFlags.model = "model.yaml"
	loadFlags.dryRun = true

	assert.NoError(t, runLoad(loadCmd, []string{"orders.csv"}))
}

func TestRunLoad_UnknownTable(t *testing.T) {
	resetLoadFlags()
	projectDir(t)
	loadFlags.table = "invoices"
	loadFlags.model = "model.yaml"
	loadFlags.dryRun = true

	err := runLoad(loadCmd, []string{"orders.csv"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pgbulk.ErrMappingNotFound)
	assert.Equal(t, pgbulk.ExitMappingError, pgbulk.ExitCodeForError(err))
}

func TestRunLoad_UnreadableRecords(t *testing.T) {
	resetLoadFlags()
	projectDir(t)
	loadFlags.table = "orders"
	loadFlags.model = "model.yaml"
	loadFlags.conn.connection = "postgresql://localhost/shop"

	err := runLoad(loadCmd, []string{"orders.parquet"})
	assert.ErrorIs(t, err, pgbulk.ErrUnsupportedFormat)
}
