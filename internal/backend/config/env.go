package config

import "os"

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "EXPENSES_"

var envFields = map[string]func(*Config) *string{
	"DATABASE_DSN":    func(c *Config) *string { return &c.DatabaseDSN },
	"JWT_SECRET":      func(c *Config) *string { return &c.JWTSecret },
	"CLIENT_PASSWORD": func(c *Config) *string { return &c.ClientPassword },
}

// parseEnv overlays Config with the EXPENSES_* secrets, so they stay out of
// process listings.
func parseEnv(cfg *Config) {
	for name, field := range envFields {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*field(cfg) = v
		}
	}
}
