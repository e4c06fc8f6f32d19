package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "EXPENSES_"

var envFields = map[string]func(*Config) *string{
	"AUTH_URL":           func(c *Config) *string { return &c.AuthURL },
	"API_KEY":            func(c *Config) *string { return &c.APIKey },
	"DATABASE_DSN":       func(c *Config) *string { return &c.DatabaseDSN },
	"STORAGE_ENDPOINT":   func(c *Config) *string { return &c.StorageEndpoint },
	"STORAGE_REGION":     func(c *Config) *string { return &c.StorageRegion },
	"STORAGE_ACCESS_KEY": func(c *Config) *string { return &c.StorageAccessKey },
	"STORAGE_SECRET_KEY": func(c *Config) *string { return &c.StorageSecretKey },
	"STORAGE_BUCKET":     func(c *Config) *string { return &c.StorageBucket },
	"PUBLIC_STORAGE_URL": func(c *Config) *string { return &c.PublicStorageURL },
	"CACHE_PATH":         func(c *Config) *string { return &c.CachePath },
	"CACHE_SECRET":       func(c *Config) *string { return &c.CacheSecret },
	"DOWNLOAD_DIR":       func(c *Config) *string { return &c.DownloadDir },
	"LOG_LEVEL":          func(c *Config) *string { return &c.LogLevel },
}

// dotenvFiles are loaded into the process environment before lookup.
// Variables already set are not overridden.
var dotenvFiles = []string{".env"}

// parseEnv overlays Config with EXPENSES_* variables. EXPENSES_REQUEST_TIMEOUT
// takes a Go duration string. It panics on a malformed duration.
func parseEnv(cfg *Config) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				panic(err)
			}
		}
	}

	for name, field := range envFields {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*field(cfg) = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}
