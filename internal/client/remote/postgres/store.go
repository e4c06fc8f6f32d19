// Package postgres implements the remote row store directly over the hosted
// Postgres database.
//
// Every call runs in its own transaction whose first statement hands the
// caller's raw access token to the database and assumes the authenticated
// role. The database verifies the token signature before any row-level
// security policy trusts its subject, so the client never sees the signing
// secret. The DSN should name the expenses_client role, which owns nothing.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/remote"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/dbx"
	"github.com/dmitrijs2005/expensesheets/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// RoleAuthenticated is the database role requests run as.
const RoleAuthenticated = "authenticated"

const scopeQuery = `SELECT set_config('request.jwt', $1, true), set_config('role', $2, true)`

type Store struct {
	db     *sql.DB
	tokens remote.TokenSource
	logger logging.Logger
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open connects with the pgx driver and refuses roles that would skip
// row-level security.
func Open(ctx context.Context, dsn string, tokens remote.TokenSource, opts ...Option) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if err := checkUnprivileged(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, tokens, opts...), nil
}

const privilegeQuery = `SELECT current_user, rolsuper OR rolbypassrls FROM pg_roles WHERE rolname = current_user`

func checkUnprivileged(ctx context.Context, db *sql.DB) error {
	var (
		role       string
		privileged bool
	)
	if err := db.QueryRowContext(ctx, privilegeQuery).Scan(&role, &privileged); err != nil {
		return mapError(err)
	}
	if privileged {
		return fmt.Errorf("%w: database role %q bypasses row-level security", common.ErrValidation, role)
	}
	return nil
}

func New(db *sql.DB, tokens remote.TokenSource, opts ...Option) *Store {
	s := &Store{db: db, tokens: tokens, logger: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ remote.Data = (*Store)(nil)

func (s *Store) Close() error {
	return s.db.Close()
}

// run executes fn with repositories bound to a token-scoped transaction.
func (s *Store) run(ctx context.Context, fn func(ctx context.Context, r *repos) error) error {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	scope := func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, scopeQuery, token, RoleAuthenticated)
		return err
	}

	err = dbx.WithScopedTx(ctx, s.db, nil, scope, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepos(tx))
	})
	return mapError(err)
}

func (s *Store) OrganizationByCode(ctx context.Context, vatNumber string) (org *models.Organization, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		org, err = r.organizations.ByVATNumber(ctx, vatNumber)
		return err
	})
	return org, err
}

func (s *Store) EmployeeByUser(ctx context.Context, userID string) (e *models.Employee, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		e, err = r.employees.ByUser(ctx, userID)
		return err
	})
	return e, err
}

func (s *Store) CreateEmployee(ctx context.Context, ne *models.NewEmployee) (e *models.Employee, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		e, err = r.employees.Create(ctx, ne)
		return err
	})
	return e, err
}

func (s *Store) EmployeesByIDs(ctx context.Context, ids []string) (list []models.Employee, err error) {
	if len(ids) == 0 {
		return nil, nil
	}
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		list, err = r.employees.ByIDs(ctx, ids)
		return err
	})
	return list, err
}

func (s *Store) ListSheets(ctx context.Context, ownerID string) (list []models.Sheet, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		list, err = r.sheets.ListByOwner(ctx, ownerID)
		return err
	})
	return list, err
}

func (s *Store) CreateSheet(ctx context.Context, ns *models.NewSheet) (id int64, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		id, err = r.sheets.Create(ctx, ns)
		return err
	})
	return id, err
}

func (s *Store) UpdateSheetStatus(ctx context.Context, id int64, status models.SheetStatus) error {
	return s.run(ctx, func(ctx context.Context, r *repos) error {
		return r.sheets.UpdateStatus(ctx, id, status)
	})
}

func (s *Store) DeleteSheet(ctx context.Context, id int64) error {
	return s.run(ctx, func(ctx context.Context, r *repos) error {
		return r.sheets.Delete(ctx, id)
	})
}

func (s *Store) ListLines(ctx context.Context, sheetID int64) (list []models.Line, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		list, err = r.lines.ListBySheet(ctx, sheetID)
		return err
	})
	return list, err
}

func (s *Store) CreateLine(ctx context.Context, nl *models.NewLine) (id int64, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		id, err = r.lines.Create(ctx, nl)
		return err
	})
	return id, err
}

func (s *Store) DeleteLine(ctx context.Context, id int64) error {
	return s.run(ctx, func(ctx context.Context, r *repos) error {
		return r.lines.Delete(ctx, id)
	})
}

func (s *Store) ListReference(ctx context.Context, table models.ReferenceTable) (list []models.RefItem, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		list, err = r.references.List(ctx, table)
		return err
	})
	return list, err
}

func (s *Store) DashboardStats(ctx context.Context, employeeID string) (st *models.DashboardStats, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		st, err = r.stats.ForEmployee(ctx, employeeID)
		return err
	})
	return st, err
}

func (s *Store) TeamStats(ctx context.Context, adminID string) (list []models.DashboardStats, err error) {
	err = s.run(ctx, func(ctx context.Context, r *repos) error {
		list, err = r.stats.ForAdmin(ctx, adminID)
		return err
	})
	return list, err
}
