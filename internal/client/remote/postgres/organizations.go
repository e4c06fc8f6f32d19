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

type OrganizationRepository struct {
	db dbx.DBTX
}

func NewOrganizationRepository(db dbx.DBTX) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) ByVATNumber(ctx context.Context, vat string) (*models.Organization, error) {
	query :=
		`SELECT id, name, "VAT_number", street, city, country FROM "Organization"
		 WHERE "VAT_number" = $1
		 LIMIT 1
		 `

	var (
		o                     models.Organization
		street, city, country sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, vat).Scan(&o.ID, &o.Name, &o.VATNumber, &street, &city, &country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	o.Street, o.City, o.Country = street.String, city.String, country.String
	return &o, nil
}
