package migrate

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/expensesheets/internal/backend/migrations"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	db, _ := newMockDB(t)
	return db
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func gooseOK(t *testing.T) {
	stubGoose(t,
		func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return nil },
		func(context.Context, *sql.DB) (int64, error) { return 5, nil },
	)
}

func stubGoose(t *testing.T, up func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error, version func(context.Context, *sql.DB) (int64, error)) {
	t.Helper()
	origUp, origVersion := gooseUpContext, gooseVersion
	gooseUpContext, gooseVersion = up, version
	t.Cleanup(func() { gooseUpContext, gooseVersion = origUp, origVersion })
}

func TestRun_Success(t *testing.T) {
	db := newDB(t)

	stubGoose(t,
		func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			if dir != "." {
				return errors.New("unexpected dir")
			}
			return nil
		},
		func(context.Context, *sql.DB) (int64, error) { return 4, nil },
	)

	require.NoError(t, Run(context.Background(), db, logging.Discard()))
}

func TestRun_UpError(t *testing.T) {
	db := newDB(t)

	stubGoose(t,
		func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return errors.New("boom") },
		func(context.Context, *sql.DB) (int64, error) {
			t.Fatal("version must not be read after a failed migration")
			return 0, nil
		},
	)

	err := Run(context.Background(), db, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRun_VersionError(t *testing.T) {
	db := newDB(t)

	stubGoose(t,
		func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return nil },
		func(context.Context, *sql.DB) (int64, error) { return 0, errors.New("no table") },
	)

	err := Run(context.Background(), db, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read schema version")
}

func TestMigrations_AreAnnotated(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	require.Len(t, files, 5)

	for _, name := range files {
		b, err := fs.ReadFile(migrations.Migrations, name)
		require.NoError(t, err)
		body := string(b)
		assert.True(t, strings.Contains(body, "-- +goose Up"), name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), name)
		assert.Equal(t, strings.Count(body, "StatementBegin"), strings.Count(body, "StatementEnd"), name)
	}
}

func TestRun_StoresServerSettings(t *testing.T) {
	db, mock := newMockDB(t)
	gooseOK(t)

	mock.ExpectExec(`SELECT app_private.set_jwt_secret($1)`).WithArgs("signing-secret").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SELECT app_private.enable_client_login($1)`).WithArgs("pw").WillReturnResult(sqlmock.NewResult(0, 1))

	err := Run(context.Background(), db, logging.Discard(), WithJWTSecret("signing-secret"), WithClientPassword("pw"))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_WithoutSecretSkipsSettings(t *testing.T) {
	db, mock := newMockDB(t)
	gooseOK(t)

	require.NoError(t, Run(context.Background(), db, logging.Discard()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SecretError(t *testing.T) {
	db, mock := newMockDB(t)
	gooseOK(t)

	mock.ExpectExec(`SELECT app_private.set_jwt_secret($1)`).WithArgs("s").WillReturnError(errors.New("permission denied"))

	err := Run(context.Background(), db, logging.Discard(), WithJWTSecret("s"))
	require.ErrorContains(t, err, "store jwt secret")
}

func upSection(t *testing.T, name string) string {
	t.Helper()
	b, err := fs.ReadFile(migrations.Migrations, name)
	require.NoError(t, err)
	up, _, found := strings.Cut(string(b), "-- +goose Down")
	require.True(t, found)
	return up
}

func TestVerifiedTokens_IdentityComesFromSignedToken(t *testing.T) {
	up := upSection(t, "00005_verified_tokens.sql")

	assert.Contains(t, up, "current_setting('request.jwt', true)")
	assert.NotContains(t, up, "request.jwt.claims", "unsigned claims no longer identify a caller")
	assert.Contains(t, up, "hmac(parts[1] || '.' || parts[2], secret, 'sha256')")
	assert.Contains(t, up, "extract(epoch FROM now())")
	assert.Contains(t, up, "REVOKE ALL ON app_private.settings FROM PUBLIC")
	assert.Contains(t, up, "REVOKE ALL ON SCHEMA app_private FROM PUBLIC")
	assert.Contains(t, up, "CREATE ROLE expenses_client NOLOGIN NOINHERIT")
	assert.NotContains(t, up, "GRANT EXECUTE ON FUNCTION app_private", "private helpers stay private")
}
