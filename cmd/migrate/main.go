package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/dmitrijs2005/expensesheets/internal/backend/config"
	"github.com/dmitrijs2005/expensesheets/internal/backend/migrate"
	"github.com/dmitrijs2005/expensesheets/internal/buildinfo"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error(ctx, "connect database", "error", err)
		os.Exit(1)
	}

	err = migrate.Run(ctx, db, logger,
		migrate.WithJWTSecret(cfg.JWTSecret),
		migrate.WithClientPassword(cfg.ClientPassword),
	)
	if err != nil {
		logger.Error(ctx, "migrate", "error", err)
		os.Exit(1)
	}
}
