package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysh-lang/mysh/internal/config"
)

func TestLoadReturnsDefaultWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadParsesValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myshrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: 50\nprompt_format: \"> \"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "> ", cfg.PromptFormat)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myshrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not_a_real_key: true\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsWrongType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myshrc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: \"not a number\"\n"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestDefaultPathIsUnderHomeDirectory(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".myshrc.yaml"), config.DefaultPath())
}
