package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/dbx"
	"github.com/shopspring/decimal"
)

type LineRepository struct {
	db dbx.DBTX
}

func NewLineRepository(db dbx.DBTX) *LineRepository {
	return &LineRepository{db: db}
}

func (r *LineRepository) ListBySheet(ctx context.Context, sheetID int64) ([]models.Line, error) {
	query :=
		`SELECT id, title, amount, date, tax, foto, id_payment_type, id_category, id_sheet
		 FROM "Expense_line"
		 WHERE id_sheet = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, sheetID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Line{}
	for rows.Next() {
		var (
			l      models.Line
			amount decimal.NullDecimal
			date   sql.NullTime
			tax    decimal.NullDecimal
			foto   sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Title, &amount, &date, &tax, &foto,
			&l.PaymentTypeID, &l.CategoryID, &l.SheetID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if amount.Valid {
			a := amount.Decimal
			l.Amount = &a
		}
		if date.Valid {
			d := date.Time.Format(models.DateLayout)
			l.Date = &d
		}
		l.Tax = tax.Decimal
		if foto.Valid && foto.String != "" {
			f := foto.String
			l.Foto = &f
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *LineRepository) Create(ctx context.Context, nl *models.NewLine) (int64, error) {
	query :=
		`INSERT INTO "Expense_line" (title, amount, date, tax, foto, id_payment_type, id_category, id_sheet)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id
		 `

	var amount, date, foto any
	if nl.Amount != nil {
		amount = nl.Amount.String()
	}
	if nl.Date != nil {
		date = *nl.Date
	}
	if nl.Foto != nil {
		foto = *nl.Foto
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, nl.Title, amount, date, nl.Tax.String(), foto,
		nl.PaymentTypeID, nl.CategoryID, nl.SheetID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *LineRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "Expense_line" WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}
