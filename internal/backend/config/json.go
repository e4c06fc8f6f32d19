package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/expensesheets/internal/flagx"
	"github.com/dmitrijs2005/expensesheets/internal/timex"
)

// JsonConfig is the on-disk shape of the migration tool configuration.
// Timeout accepts "30s" style strings or integer nanoseconds.
type JsonConfig struct {
	DatabaseDSN string         `json:"database_dsn"`
	Timeout     timex.Duration `json:"timeout"`
	LogLevel    string         `json:"log_level"`
	LogFormat   string         `json:"log_format"`
	JWTSecret   string         `json:"jwt_secret"`
}

// parseJson loads the file named by -c or -config, if any, into config.
// Missing keys keep their current value. It panics on read or unmarshal errors.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.Timeout.Duration > 0 {
		config.Timeout = c.Timeout.Duration
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		config.LogFormat = c.LogFormat
	}
	if c.JWTSecret != "" {
		config.JWTSecret = c.JWTSecret
	}
}
