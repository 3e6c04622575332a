package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	require.NoError(t, err, "should load without error")

	assert.Equal(t, tmpDir, cfg.Project.RootDir)
	assert.Equal(t, "prd.json", cfg.Files.Store)
	assert.Equal(t, "progress.txt", cfg.Files.Progress)
	assert.Equal(t, "PROMPT.md", cfg.Files.Template)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:8430", cfg.Address())
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := `
[files]
store = "stories.json"
archive_dir = "history"

[service]
host = "0.0.0.0"
port = 9000

[logging]
level = "debug"
output = ["stdout", "file"]
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err, "should load without error")

	assert.Equal(t, "stories.json", cfg.Files.Store)
	assert.Equal(t, "history", cfg.Files.ArchiveDir)
	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)

	// Unset sections keep their defaults.
	assert.Equal(t, "progress.txt", cfg.Files.Progress)
	assert.Equal(t, "PROMPT.md", cfg.Files.Template)
}

func TestLoad_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("[files\nbroken"), 0644))

	_, err := Load(tmpDir)
	assert.Error(t, err, "broken TOML should surface an error")
}

func TestLoad_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("STORYLOOP_TEST_STORE", "from-env.json")

	content := `
[files]
store = "${STORYLOOP_TEST_STORE}"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Files.Store)
}

func TestPaths_ResolveAgainstRoot(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig(tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, "prd.json"), cfg.StorePath())
	assert.Equal(t, filepath.Join(tmpDir, "progress.txt"), cfg.ProgressPath())
	assert.Equal(t, filepath.Join(tmpDir, "PROMPT.md"), cfg.TemplatePath())
	assert.Equal(t, filepath.Join(tmpDir, ".storyloop-branch"), cfg.MarkerPath())
	assert.Equal(t, filepath.Join(tmpDir, "archive"), cfg.ArchiveDir())
}

func TestPaths_AbsoluteOverride(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Files.Store = "/var/data/prd.json"

	assert.Equal(t, "/var/data/prd.json", cfg.StorePath(), "absolute paths pass through untouched")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig(tmpDir)
	cfg.Service.Port = 9999
	cfg.Logging.Level = "warn"
	require.NoError(t, cfg.Save())

	loaded, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Service.Port)
	assert.Equal(t, "warn", loaded.Logging.Level)
}
