package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the expense sheets CLI.
//
// DatabaseDSN logs in as the unprivileged expenses_client role; the client
// refuses superuser and RLS-bypassing roles. RequestTimeout bounds every
// remote call issued by a single command.
type Config struct {
	AuthURL     string
	APIKey      string
	DatabaseDSN string

	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	PublicStorageURL string

	CachePath   string
	CacheSecret string
	DownloadDir string

	RequestTimeout time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AuthURL = "http://127.0.0.1:54321/auth/v1"
	c.StorageEndpoint = "http://127.0.0.1:54321/storage/v1/s3"
	c.StorageRegion = "local"
	c.StorageBucket = "tickets"
	c.PublicStorageURL = "http://127.0.0.1:54321"
	c.CachePath = "expenses.db"
	c.DownloadDir = "downloads"
	c.RequestTimeout = 15 * time.Second
	c.LogLevel = "info"
}

// Validate reports settings without which the client cannot start.
func (c *Config) Validate() error {
	switch {
	case c.AuthURL == "":
		return fmt.Errorf("auth url is required")
	case c.APIKey == "":
		return fmt.Errorf("api key is required")
	case c.DatabaseDSN == "":
		return fmt.Errorf("database dsn is required")
	case c.CacheSecret == "":
		return fmt.Errorf("cache secret is required")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
