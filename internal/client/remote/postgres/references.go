package postgres

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/dbx"
)

type ReferenceRepository struct {
	db dbx.DBTX
}

func NewReferenceRepository(db dbx.DBTX) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// tableQueries keeps table names out of string formatting.
var tableQueries = map[models.ReferenceTable]string{
	models.TableSheetStatus: `SELECT id, name FROM "Sheet_status" ORDER BY name`,
	models.TablePaymentType: `SELECT id, name FROM "Expense_payment_type" ORDER BY name`,
	models.TableCategory:    `SELECT id, name FROM "Expense_category" ORDER BY name`,
}

func (r *ReferenceRepository) List(ctx context.Context, table models.ReferenceTable) ([]models.RefItem, error) {
	query, ok := tableQueries[table]
	if !ok {
		return nil, fmt.Errorf("unknown reference table %q", table)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.RefItem{}
	for rows.Next() {
		var it models.RefItem
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
