package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/dbx"
	"github.com/shopspring/decimal"
)

const statsColumns = `id_user, id_admin, total_expense_sheets, total_expense_lines,
		        approved_sheets, pending_sheets, denied_sheets, total_amount`

type StatsRepository struct {
	db dbx.DBTX
}

func NewStatsRepository(db dbx.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

func scanStats(row rowScanner) (*models.DashboardStats, error) {
	var (
		st      models.DashboardStats
		adminID sql.NullString
		total   decimal.NullDecimal
	)
	if err := row.Scan(&st.UserID, &adminID, &st.TotalExpenseSheets, &st.TotalExpenseLines,
		&st.ApprovedSheets, &st.PendingSheets, &st.DeniedSheets, &total); err != nil {
		return nil, err
	}
	if adminID.Valid {
		st.AdminID = &adminID.String
	}
	st.TotalAmount = total.Decimal
	return &st, nil
}

func (r *StatsRepository) ForEmployee(ctx context.Context, employeeID string) (*models.DashboardStats, error) {
	query := `SELECT ` + statsColumns + `
		 FROM expense_dashboard_stats
		 WHERE id_user = $1
		 LIMIT 1`

	st, err := scanStats(r.db.QueryRowContext(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return st, nil
}

func (r *StatsRepository) ForAdmin(ctx context.Context, adminID string) ([]models.DashboardStats, error) {
	query := `SELECT ` + statsColumns + `
		 FROM expense_dashboard_stats
		 WHERE id_admin = $1
		 ORDER BY id_user`

	rows, err := r.db.QueryContext(ctx, query, adminID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.DashboardStats{}
	for rows.Next() {
		st, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
