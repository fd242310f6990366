package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/papapumpkin/srvxml/internal/liberty"
)

// Config holds all runtime configuration for an srvxml invocation.
// Values are populated from .srvxml.yaml, SRVXML_* env vars, and CLI flags.
type Config struct {
	Server      string `mapstructure:"server"`       // server.xml being edited
	Catalog     string `mapstructure:"catalog"`      // feature catalog source
	InstallDir  string `mapstructure:"install_dir"`  // installation root
	Journal     bool   `mapstructure:"journal"`      // record edits for history/undo
	JournalPath string `mapstructure:"journal_path"` // SQLite journal location
	LogLevel    string `mapstructure:"log_level"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("server", "server.xml")
	viper.SetDefault("catalog", "")
	viper.SetDefault("install_dir", "")
	viper.SetDefault("journal", true)
	viper.SetDefault("journal_path", defaultJournalPath())
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	return cfg, nil
}

// ResolveInstallDir returns the configured install dir, or derives it from
// the server document path.
func (c Config) ResolveInstallDir() (string, error) {
	if c.InstallDir != "" {
		return c.InstallDir, nil
	}
	return liberty.InstallDir(c.Server)
}

// ResolveCatalog returns the configured catalog path, or the installation's
// features.xml.
func (c Config) ResolveCatalog() (string, error) {
	if c.Catalog != "" {
		return c.Catalog, nil
	}
	dir, err := c.ResolveInstallDir()
	if err != nil {
		return "", fmt.Errorf("no catalog configured and %w", err)
	}
	return liberty.CatalogPath(dir), nil
}

func defaultJournalPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "srvxml", "journal.db")
	}
	return filepath.Join(".srvxml", "journal.db")
}
