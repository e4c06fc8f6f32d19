package migrate

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSNEnv names a disposable database with superuser rights. Tests that
// need a live server skip without it.
const testDSNEnv = "EXPENSES_TEST_DATABASE_DSN"

const testSecret = "server-only-signing-secret"

func liveDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Run(context.Background(), db, logging.Discard(), WithJWTSecret(testSecret)))
	return db
}

func signToken(t *testing.T, secret, sub string, ttl time.Duration) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": "authenticated",
		"exp":  time.Now().Add(ttl).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

// uidFor runs app_uid() as the authenticated role with the given GUCs.
func uidFor(t *testing.T, db *sql.DB, guc, value string) (string, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `SELECT set_config($1, $2, true), set_config('role', 'authenticated', true)`, guc, value)
	require.NoError(t, err)

	var id sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT app_uid()::text`).Scan(&id)
	return id.String, err
}

func requireSQLState(t *testing.T, err error, code string) {
	t.Helper()
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr), "want postgres error, got %v", err)
	assert.Equal(t, code, pgErr.Code, pgErr.Message)
}

func TestAppUID_SignedToken(t *testing.T) {
	db := liveDB(t)
	user := uuid.NewString()

	got, err := uidFor(t, db, "request.jwt", signToken(t, testSecret, user, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestAppUID_ForgedSubjectRejected(t *testing.T) {
	db := liveDB(t)
	victim := uuid.NewString()

	_, err := uidFor(t, db, "request.jwt", signToken(t, "attacker-guess", victim, time.Hour))
	requireSQLState(t, err, "28000")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": victim, "exp": time.Now().Add(time.Hour).Unix()})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = uidFor(t, db, "request.jwt", tok)
	requireSQLState(t, err, "28000")
}

func TestAppUID_ExpiredTokenRejected(t *testing.T) {
	db := liveDB(t)

	_, err := uidFor(t, db, "request.jwt", signToken(t, testSecret, uuid.NewString(), -time.Minute))
	requireSQLState(t, err, "28000")
}

func TestAppUID_IgnoresClientClaims(t *testing.T) {
	db := liveDB(t)

	got, err := uidFor(t, db, "request.jwt.claims", `{"sub":"`+uuid.NewString()+`","role":"authenticated"}`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppUID_SecretNotReadable(t *testing.T) {
	db := liveDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `SELECT set_config('role', 'authenticated', true)`)
	require.NoError(t, err)

	var v string
	err = tx.QueryRowContext(ctx, `SELECT value FROM app_private.settings`).Scan(&v)
	requireSQLState(t, err, "42501")
}
