package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/dbx"
)

const employeeColumns = `id, name, is_admin, id_organization, id_user, id_admin`

type EmployeeRepository struct {
	db dbx.DBTX
}

func NewEmployeeRepository(db dbx.DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*models.Employee, error) {
	var (
		e       models.Employee
		name    sql.NullString
		org     sql.NullString
		adminID sql.NullString
	)
	if err := row.Scan(&e.ID, &name, &e.IsAdmin, &org, &e.UserID, &adminID); err != nil {
		return nil, err
	}
	e.Name = name.String
	e.OrganizationID = org.String
	if adminID.Valid {
		e.AdminID = &adminID.String
	}
	return &e, nil
}

// ByUser returns the profile of an auth user. A row that fails the profile
// invariants is reported as a validation error.
func (r *EmployeeRepository) ByUser(ctx context.Context, userID string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id_user = $1 LIMIT 1`

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, ne *models.NewEmployee) (*models.Employee, error) {
	query :=
		`INSERT INTO employees (name, is_admin, id_organization, id_user)
		 VALUES ($1, $2, $3, $4)
		 RETURNING ` + employeeColumns

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, ne.Name, ne.IsAdmin, ne.OrganizationID, ne.UserID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// ByIDs returns the employees with the given ids, in no particular order.
func (r *EmployeeRepository) ByIDs(ctx context.Context, ids []string) ([]models.Employee, error) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id IN (` + placeholders(1, len(ids)) + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
