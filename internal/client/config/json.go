package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/expensesheets/internal/flagx"
	"github.com/dmitrijs2005/expensesheets/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the current value untouched.
type JsonConfig struct {
	AuthURL          string         `json:"auth_url"`
	APIKey           string         `json:"api_key"`
	DatabaseDSN      string         `json:"database_dsn"`
	StorageEndpoint  string         `json:"storage_endpoint"`
	StorageRegion    string         `json:"storage_region"`
	StorageAccessKey string         `json:"storage_access_key"`
	StorageSecretKey string         `json:"storage_secret_key"`
	StorageBucket    string         `json:"storage_bucket"`
	PublicStorageURL string         `json:"public_storage_url"`
	CachePath        string         `json:"cache_path"`
	CacheSecret      string         `json:"cache_secret"`
	DownloadDir      string         `json:"download_dir"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by -c or
// -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.AuthURL, jc.AuthURL)
	set(&cfg.APIKey, jc.APIKey)
	set(&cfg.DatabaseDSN, jc.DatabaseDSN)
	set(&cfg.StorageEndpoint, jc.StorageEndpoint)
	set(&cfg.StorageRegion, jc.StorageRegion)
	set(&cfg.StorageAccessKey, jc.StorageAccessKey)
	set(&cfg.StorageSecretKey, jc.StorageSecretKey)
	set(&cfg.StorageBucket, jc.StorageBucket)
	set(&cfg.PublicStorageURL, jc.PublicStorageURL)
	set(&cfg.CachePath, jc.CachePath)
	set(&cfg.CacheSecret, jc.CacheSecret)
	set(&cfg.DownloadDir, jc.DownloadDir)
	set(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
