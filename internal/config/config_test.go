package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemadiff.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolate keeps the default search paths away from the developer's files
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Equal(t, 28, cfg.Log.MaxAgeDays)
	assert.Equal(t, 1, cfg.Compare.Workers)
	assert.Equal(t, "json", cfg.Compare.Format)
	assert.Equal(t, "postgresql", cfg.Migrate.Dialect)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
log:
  level: debug
  file: /tmp/schemadiff.log
compare:
  workers: 4
  format: markdown
migrate:
  dialect: mysql
datasources:
  prod:
    type: postgresql
    url: postgres://localhost/app
    schemas: [public, billing]
  Local:
    type: sqlite
    url: sqlite://./app.db
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/schemadiff.log", cfg.Log.File)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, 4, cfg.Compare.Workers)
	assert.Equal(t, "markdown", cfg.Compare.Format)
	assert.Equal(t, "mysql", cfg.Migrate.Dialect)

	prod, err := cfg.Datasource("prod")
	require.NoError(t, err)
	assert.Equal(t, DatasourceConfig{Type: "postgresql", URL: "postgres://localhost/app", Schemas: []string{"public", "billing"}}, prod)

	local, err := cfg.Datasource("Local")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", local.Type)

	_, err = cfg.Datasource("staging")
	assert.ErrorContains(t, err, "unknown datasource")
}

func TestLoadDefaultLocations(t *testing.T) {
	t.Run("working directory", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile(".schemadiff.yaml", []byte("compare:\n  workers: 6\n"), 0o644))

		cfg, err := NewLoader().Load("")
		require.NoError(t, err)
		assert.Equal(t, 6, cfg.Compare.Workers)
		assert.NotEmpty(t, cfg.File)
	})

	t.Run("home directory", func(t *testing.T) {
		isolate(t)
		dir := filepath.Join(os.Getenv("HOME"), ".config", "schemadiff")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("migrate:\n  dialect: kingbase\n"), 0o644))

		cfg, err := NewLoader().Load("")
		require.NoError(t, err)
		assert.Equal(t, "kingbase", cfg.Migrate.Dialect)
	})
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "log:\n  level: warn\ncompare:\n  workers: 2\n")

	t.Setenv("SCHEMADIFF_LOG_LEVEL", "error")
	t.Setenv("SCHEMADIFF_COMPARE_WORKERS", "3")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 0, "")
	require.NoError(t, flags.Parse([]string{"--workers", "8"}))

	loader := NewLoader()
	require.NoError(t, loader.BindFlag("compare.workers", flags.Lookup("workers")))

	cfg, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level, "env overrides file")
	assert.Equal(t, 8, cfg.Compare.Workers, "flag overrides env")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "malformed yaml", content: "log: [level", want: "failed to read config"},
		{name: "negative workers", content: "compare:\n  workers: -1\n", want: "compare.workers"},
		{name: "unknown datasource type", content: "datasources:\n  x:\n    type: oracle\n    url: o://\n", want: "unsupported type"},
		{name: "missing datasource url", content: "datasources:\n  x:\n    type: mysql\n", want: "url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := NewLoader().Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("explicit missing file", func(t *testing.T) {
		isolate(t)
		_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("nil flag", func(t *testing.T) {
		assert.Error(t, NewLoader().BindFlag("compare.workers", nil))
	})
}
