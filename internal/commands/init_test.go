package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/synthledger/internal/commands"
	"github.com/cleared-dev/synthledger/internal/config"
)

// runSynthledger executes the CLI in-process and returns what it wrote to
// stdout and stderr.
func runSynthledger(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runSynthledger(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized synthledger project at "+dir)

	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	_, err = os.Stat(filepath.Join(dir, "import", ".gitkeep"))
	assert.NoError(t, err)
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSynthledger(t, "init", dir)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"paypal", "coinbase", "asnbank", "ovchipkaart"}, cfg.Names())
	for _, s := range cfg.Sources {
		assert.Equal(t, "EUR", s.Rules.Currency, "default currency")
	}
}

func TestInit_Currency(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSynthledger(t, "init", dir, "--currency", "USD")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	for _, s := range cfg.Sources {
		assert.Equal(t, "USD", s.Rules.Currency)
	}
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSynthledger(t, "init", dir)
	require.NoError(t, err)

	_, _, err = runSynthledger(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestVersion(t *testing.T) {
	out, _, err := runSynthledger(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (commit: none")
}
