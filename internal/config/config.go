// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageSQL    = "sql"
	StoragePebble = "pebble"
	StorageMemory = "memory"
)

type Config struct {
	Port    string `env:"PORT"     envDefault:"8080"`
	Storage string `env:"STORAGE"  envDefault:"sql"`
	// DBPath is a sqlite file path or a MySQL DSN.
	DBPath     string `env:"DB_PATH"     envDefault:"data/mangadock.db"`
	PebbleDir  string `env:"PEBBLE_DIR"  envDefault:"data/history"`
	HistoryKey string `env:"HISTORY_KEY" envDefault:"manga_reading_history"`

	CatalogBaseURL  string        `env:"CATALOG_BASE_URL"  envDefault:"https://otruyenapi.com/v1/api"`
	CatalogMediaURL string        `env:"CATALOG_MEDIA_URL" envDefault:"https://img.otruyenapi.com/uploads/comics"`
	CatalogDialect  string        `env:"CATALOG_DIALECT"   envDefault:"otruyen"`
	CatalogTimeout  time.Duration `env:"CATALOG_TIMEOUT"   envDefault:"10s"`

	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	ServiceName  string `env:"SERVICE_NAME"  envDefault:"mangadock"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQL, StoragePebble, StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE %q: want sql, pebble or memory", c.Storage)
	}
	switch c.CatalogDialect {
	case "otruyen", "generic":
	default:
		return fmt.Errorf("invalid CATALOG_DIALECT %q: want otruyen or generic", c.CatalogDialect)
	}
	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("invalid CATALOG_TIMEOUT %s: must be positive", c.CatalogTimeout)
	}
	if c.HistoryKey == "" {
		return fmt.Errorf("HISTORY_KEY must not be empty")
	}
	return nil
}
