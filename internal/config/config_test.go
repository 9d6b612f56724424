package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "./netsketch.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.Tick.Duration())
	assert.Empty(t, cfg.Watch.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netsketch.yaml")
	content := `
server:
  addr: 127.0.0.1:8080
log:
  level: debug
  format: json
simulation:
  tick: 50ms
watch:
  path: ./lab.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, loadedPath, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, path, loadedPath)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.Tick.Duration())
	assert.Equal(t, "./lab.json", cfg.Watch.Path)
	// Unset values get defaults
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce.Duration())
}

func TestLoadFromPathErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("simulation:\n  tick: soon\n"), 0644))
	_, _, err = LoadFromPath(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  format: xml\n"), 0644))
	_, _, err = LoadFromPath(invalid)
	assert.ErrorContains(t, err, "log.format")
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.Watch.Path = "/srv/lab.yaml"
	require.NoError(t, cfg.Save(path))

	loaded, _, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFindConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", "")

	t.Run("env var", func(t *testing.T) {
		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))
		t.Setenv(EnvConfigPath, path)

		assert.Equal(t, path, FindConfigPath())
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		xdg := filepath.Join(dir, "xdg")
		path := filepath.Join(xdg, ConfigDirName, "config.yaml")
		require.NoError(t, EnsureConfigDir(path))
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))
		t.Setenv("XDG_CONFIG_HOME", xdg)

		assert.Equal(t, path, FindConfigPath())
	})

	t.Run("working directory wins over xdg", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("version: 1\n"), 0644))

		got := FindConfigPath()
		assert.Equal(t, ConfigFileName, filepath.Base(got))
		assert.True(t, filepath.IsAbs(got))
	})
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)
	assert.Equal(t, 5*time.Minute, d.Duration())

	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{d})
	require.NoError(t, err)
	assert.Equal(t, "d: 5m0s\n", string(out))
}

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Watch.Path = "lab.json"

	s := cfg.Summary()
	assert.Contains(t, s, ":3000")
	assert.Contains(t, s, "Watching: lab.json")
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/explicit.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/user")

	paths := SearchPaths()
	require.Len(t, paths, 5)
	assert.Equal(t, "/tmp/explicit.yaml", paths[0])
	assert.Equal(t, ConfigFileName, filepath.Base(paths[1]))
	assert.Equal(t, "/xdg/netsketch/config.yaml", paths[2])
	assert.Equal(t, "/home/user/.config/netsketch/config.yaml", paths[3])
	assert.Equal(t, "/etc/netsketch/config.yaml", paths[4])
}
