package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/dmitrijs2005/expensesheets/internal/dbx"
	"github.com/shopspring/decimal"
)

type SheetRepository struct {
	db dbx.DBTX
}

func NewSheetRepository(db dbx.DBTX) *SheetRepository {
	return &SheetRepository{db: db}
}

// ListByOwner reads the sheets of one employee from the view that joins the
// status and sums the line amounts. Newest first, id breaking ties.
func (r *SheetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Sheet, error) {
	query :=
		`SELECT id, title, description, project, total_amount, create_date, approval_date,
		        id_user, status_id, status_name
		 FROM expense_sheets_with_status
		 WHERE id_user = $1
		 ORDER BY create_date DESC, id DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Sheet{}
	for rows.Next() {
		var (
			s            models.Sheet
			description  sql.NullString
			project      sql.NullString
			total        decimal.NullDecimal
			approvalDate sql.NullTime
			statusID     int64
			statusName   sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &description, &project, &total, &s.CreateDate,
			&approvalDate, &s.UserID, &statusID, &statusName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		st, err := models.ParseStatus(statusID)
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", s.ID, err)
		}

		s.Description = description.String
		s.Project = project.String
		s.TotalAmount = total.Decimal
		if approvalDate.Valid {
			t := approvalDate.Time
			s.ApprovalDate = &t
		}
		s.Status = models.StatusRef{ID: st, Name: statusName.String}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Create inserts the sheet. total_amount is never written.
func (r *SheetRepository) Create(ctx context.Context, ns *models.NewSheet) (int64, error) {
	query :=
		`INSERT INTO "Expense_sheet" (title, description, project, create_date, approval_date, id_user, id_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	var approval any
	if ns.ApprovalDate != nil {
		approval = *ns.ApprovalDate
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, ns.Title, ns.Description, ns.Project, ns.CreateDate,
		approval, ns.UserID, int64(ns.StatusID)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *SheetRepository) UpdateStatus(ctx context.Context, id int64, status models.SheetStatus) error {
	query := `UPDATE "Expense_sheet" SET id_status = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, int64(status), id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func (r *SheetRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "Expense_sheet" WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

// expectAffected turns an update that touched nothing (missing row, or one
// hidden by row-level security) into ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
