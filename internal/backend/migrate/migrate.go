// Package migrate applies the embedded schema migrations to the hosted
// PostgreSQL database using goose.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/backend/migrations"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// ClientRole is the login role devices connect as.
const ClientRole = "expenses_client"

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseVersion is a seam for testing goose.GetDBVersionContext.
var gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) {
	return goose.GetDBVersionContext(ctx, db)
}

type settings struct {
	jwtSecret      string
	clientPassword string
}

type Option func(*settings)

// WithJWTSecret stores the auth service's signing secret in the database so
// access tokens can be verified there. It never leaves the server.
func WithJWTSecret(secret string) Option {
	return func(s *settings) { s.jwtSecret = secret }
}

// WithClientPassword lets the expenses_client role log in with password.
func WithClientPassword(password string) Option {
	return func(s *settings) { s.clientPassword = password }
}

// Run brings the schema up to the latest embedded migration and applies the
// server-side settings.
func Run(ctx context.Context, db *sql.DB, logger logging.Logger, opts ...Option) error {
	var st settings
	for _, o := range opts {
		o(&st)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	v, err := gooseVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info(ctx, "schema up to date", "version", v)

	if st.jwtSecret == "" {
		logger.Warn(ctx, "no jwt secret configured, every client request will be rejected")
	} else if _, err := db.ExecContext(ctx, `SELECT app_private.set_jwt_secret($1)`, st.jwtSecret); err != nil {
		return fmt.Errorf("store jwt secret: %w", err)
	}

	if st.clientPassword != "" {
		if _, err := db.ExecContext(ctx, `SELECT app_private.enable_client_login($1)`, st.clientPassword); err != nil {
			return fmt.Errorf("enable client login: %w", err)
		}
		logger.Info(ctx, "client login enabled", "role", ClientRole)
	}
	return nil
}
