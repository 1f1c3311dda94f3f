package toylang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toylang.yaml")
	content := "package_root: ./src\nimport_paths:\n  - ./vendor\nentry: run\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./src", cfg.PackageRoot)
	assert.Equal(t, []string{"./vendor"}, cfg.ImportPaths)
	assert.Equal(t, "run", cfg.Entry)
}

func TestConfigOptionsAppliesEntryOnly(t *testing.T) {
	cfg := &Config{Entry: "start"}
	e := New(cfg.Options()...)
	assert.Equal(t, "start", e.entry)
}

func TestConfigOptionsLeavesDefaultEntryWhenUnset(t *testing.T) {
	cfg := &Config{}
	e := New(cfg.Options()...)
	assert.Equal(t, "main", e.entry)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
