package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/config"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `
categories:
  - name: Dairy
products:
  - name: Milk 500ml
    category: Dairy
    selling_price: "27.50"
    opening_stock: 30
    unit: packet
customers:
  - name: Asha Patil
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:                "test",
		DBPath:             filepath.Join(dir, "shop.db"),
		BackupDir:          filepath.Join(dir, "backups"),
		ReceiptDir:         filepath.Join(dir, "receipts"),
		BillPrefix:         "KM",
		Timezone:           "UTC",
		JWTSecret:          "cli-test",
		JWTExpirationHours: 1,
	}
}

// run executes one command line against cfg and returns stdout.
func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(func() (*config.Config, error) {
		c := *cfg
		return &c, nil
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "kiranamitra", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	paths := [][]string{
		{"serve"},
		{"backup", "info"}, {"backup", "export"}, {"backup", "import"},
		{"sync", "login"}, {"sync", "logout"}, {"sync", "status"}, {"sync", "run"}, {"sync", "check"}, {"sync", "restore"},
		{"seed"},
		{"pin", "set"},
		{"report", "sales"}, {"report", "credit"}, {"report", "inventory"}, {"report", "products"},
	}
	for _, path := range paths {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, testConfig(t), "backup", "info", "--format", "yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSeedThenBackupInfo(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(catalog), 0o644))

	out, err := run(t, cfg, "seed", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 categories, 1 products, 1 customers (0 skipped)")

	out, err = run(t, cfg, "backup", "info", "--format", "json")
	require.NoError(t, err)
	var info dto.BackupInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	// category, product, opening stock log, customer
	assert.EqualValues(t, 4, info.TotalRecords)
}

func TestBackupExportImport(t *testing.T) {
	cfg := testConfig(t)
	file := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(catalog), 0o644))
	_, err := run(t, cfg, "seed", file)
	require.NoError(t, err)

	out, err := run(t, cfg, "backup", "export", "--format", "json")
	require.NoError(t, err)
	var exp dto.ExportResponse
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.FileExists(t, exp.Path)

	_, err = run(t, cfg, "backup", "import", exp.Path)
	require.Error(t, err, "import without --yes must refuse")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	other := testConfig(t)
	out, err = run(t, other, "backup", "import", "--yes", exp.Path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 4 records\n", out)
}

func TestPinSet(t *testing.T) {
	cfg := testConfig(t)
	_, err := run(t, cfg, "pin", "set", "--new", "2468")
	require.NoError(t, err)

	_, err = run(t, cfg, "pin", "set", "--new", "1357", "--current", "0000")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = run(t, cfg, "pin", "set", "--new", "1357", "--current", "2468")
	require.NoError(t, err)
}

func TestSyncRunWithoutCredentials(t *testing.T) {
	_, err := run(t, testConfig(t), "sync", "run")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Cloud sync is not configured", err.Error())
}

func TestSalesReportBadRange(t *testing.T) {
	_, err := run(t, testConfig(t), "report", "sales", "--from", "2026-10-20", "--to", "2026-10-01")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", assert.AnError)))
}
