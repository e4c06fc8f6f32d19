package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLStates raised by the backend schema.
const (
	sqlStateInsufficientPrivilege = "42501"
	sqlStateInvalidAuthorization  = "28000"
	sqlStateSheetLocked           = "EXS01"
	sqlStateForeignKeyViolation   = "23503"
	sqlStateCheckViolation        = "23514"
	sqlStateNotNullViolation      = "23502"
)

// mapError translates driver errors into the client error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateInsufficientPrivilege, sqlStateInvalidAuthorization:
			return fmt.Errorf("%w: %s", common.ErrUnauthorized, pgErr.Message)
		case sqlStateSheetLocked:
			return fmt.Errorf("%w: %s", common.ErrSheetLocked, pgErr.Message)
		case sqlStateForeignKeyViolation, sqlStateCheckViolation, sqlStateNotNullViolation:
			return fmt.Errorf("%w: %s", common.ErrValidation, pgErr.Message)
		}
		return fmt.Errorf("db error: %w", err)
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return err
}
