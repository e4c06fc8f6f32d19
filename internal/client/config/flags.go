package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/flagx"
)

var knownFlags = []string{"-u", "-k", "-d", "-e", "-b", "-f", "-o", "-t", "-l"}

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered to the flags handled here with flagx.FilterArgs, so
// -c/-config and anything else pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.AuthURL, "u", cfg.AuthURL, "auth service URL")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "public API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "data service DSN")
	fs.StringVar(&cfg.StorageEndpoint, "e", cfg.StorageEndpoint, "attachment store S3 endpoint")
	fs.StringVar(&cfg.StorageBucket, "b", cfg.StorageBucket, "attachment bucket")
	fs.StringVar(&cfg.CachePath, "f", cfg.CachePath, "local cache file")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "download directory")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
