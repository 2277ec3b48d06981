// Package config loads schemadiff settings from defaults, an optional config
// file, SCHEMADIFF_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: log.level -> SCHEMADIFF_LOG_LEVEL
const EnvPrefix = "SCHEMADIFF"

// Datasource types accepted in the datasources section
var datasourceTypes = map[string]bool{
	"postgresql": true,
	"mysql":      true,
	"sqlite":     true,
	"kingbase":   true,
}

// Config is the resolved configuration
type Config struct {
	Log         LogConfig                   `mapstructure:"log"`
	Compare     CompareConfig               `mapstructure:"compare"`
	Migrate     MigrateConfig               `mapstructure:"migrate"`
	Datasources map[string]DatasourceConfig `mapstructure:"datasources"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// LogConfig controls the log sink
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CompareConfig holds defaults for the compare command
type CompareConfig struct {
	Workers int    `mapstructure:"workers"`
	Format  string `mapstructure:"format"`
}

// MigrateConfig holds defaults for the migrate command
type MigrateConfig struct {
	Dialect string `mapstructure:"dialect"`
}

// DatasourceConfig is a named database that snapshots can be captured from
type DatasourceConfig struct {
	Type    string   `mapstructure:"type"`
	URL     string   `mapstructure:"url"`
	Schemas []string `mapstructure:"schemas"`
}

// Loader layers configuration sources on a viper instance
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment overrides applied
func NewLoader() *Loader {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("compare.workers", 1)
	v.SetDefault("compare.format", "json")
	v.SetDefault("migrate.dialect", "postgresql")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag makes a command-line flag override key when the flag is set
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the config file and resolves all layers. When path is empty the
// default locations are searched and a missing file is not an error; an
// explicit path must exist. A malformed file is always an error.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(".schemadiff")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if l.v.ConfigFileUsed() == "" && path == "" {
		if err := l.readHomeConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = l.v.ConfigFileUsed()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readHomeConfig falls back to $HOME/.config/schemadiff/config.yaml
func (l *Loader) readHomeConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	file := filepath.Join(home, ".config", "schemadiff", "config.yaml")
	if _, err := os.Stat(file); err != nil {
		return nil
	}
	l.v.SetConfigFile(file)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Compare.Workers < 0 {
		return fmt.Errorf("compare.workers must not be negative, got %d", c.Compare.Workers)
	}
	for name, ds := range c.Datasources {
		if !datasourceTypes[strings.ToLower(ds.Type)] {
			return fmt.Errorf("datasource %s: unsupported type %q", name, ds.Type)
		}
		if ds.URL == "" {
			return fmt.Errorf("datasource %s: url is required", name)
		}
	}
	return nil
}

// Datasource returns the named datasource. Names are case-insensitive.
func (c *Config) Datasource(name string) (DatasourceConfig, error) {
	ds, ok := c.Datasources[strings.ToLower(name)]
	if !ok {
		return DatasourceConfig{}, fmt.Errorf("unknown datasource: %s", name)
	}
	return ds, nil
}
