package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN
//	-t int      timeout, seconds
//	-l string   log level
//	-f string   log format ("json" or "text")
//	-s string   jwt signing secret
//	-p string   expenses_client password
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-l", "-f", "-s", "-p"})

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	timeout := fs.Int("t", int(config.Timeout.Seconds()), "timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "jwt signing secret")
	fs.StringVar(&config.ClientPassword, "p", config.ClientPassword, "client role password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.Timeout = time.Duration(*timeout) * time.Second
}
