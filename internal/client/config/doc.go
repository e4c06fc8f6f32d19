// Package config loads runtime configuration for the expense sheets CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. A .env file in the working directory, then EXPENSES_* variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string   auth service URL
//	-k string   public API key
//	-d string   Postgres DSN of the data service
//	-e string   S3 endpoint of the attachment store
//	-b string   attachment bucket
//	-f string   local cache file
//	-o string   download directory
//	-t int      request timeout (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds:
//
//	{
//	  "auth_url": "https://xyz.supabase.co/auth/v1",
//	  "api_key": "anon-key",
//	  "database_dsn": "postgres://...",
//	  "storage_bucket": "tickets",
//	  "request_timeout": "15s"
//	}
package config
