package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format of Line.Date.
const DateLayout = time.DateOnly

// DefaultTax is the VAT percentage prefilled on a new line.
var DefaultTax = decimal.NewFromInt(21)

type Line struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Date          *string          `json:"date,omitempty"`
	Tax           decimal.Decimal  `json:"tax"`
	Foto          *string          `json:"foto,omitempty"`
	PaymentTypeID int64            `json:"id_payment_type"`
	CategoryID    int64            `json:"id_category"`
	SheetID       int64            `json:"id_sheet"`
}

// Attachment returns the attachment URL, or "".
func (l *Line) Attachment() string {
	if l.Foto == nil {
		return ""
	}
	return *l.Foto
}

// LineForm is the raw input for a new line. Amount, Tax and Date are text;
// AttachmentPath, when set, names a local file to upload.
type LineForm struct {
	Title          string `validate:"required"`
	Amount         string
	Date           string
	Tax            string
	Foto           string
	PaymentTypeID  int64 `validate:"required,gt=0"`
	CategoryID     int64 `validate:"required,gt=0"`
	AttachmentPath string
}

// NewLine is the insert payload for Expense_line.
type NewLine struct {
	Title         string
	Amount        *decimal.Decimal
	Date          *string
	Tax           decimal.Decimal
	Foto          *string
	PaymentTypeID int64
	CategoryID    int64
	SheetID       int64
}

// Build validates the form and produces the insert payload for sheetID. An
// empty amount or date is sent as NULL, an empty tax as zero.
func (f LineForm) Build(sheetID int64) (*NewLine, error) {
	f.Title = strings.TrimSpace(f.Title)
	if err := Check(f); err != nil {
		return nil, err
	}

	nl := &NewLine{
		Title:         f.Title,
		Tax:           decimal.Zero,
		PaymentTypeID: f.PaymentTypeID,
		CategoryID:    f.CategoryID,
		SheetID:       sheetID,
	}

	if s := strings.TrimSpace(f.Amount); s != "" {
		amt, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: amount %q is not a number", common.ErrValidation, s)
		}
		nl.Amount = &amt
	}

	if s := strings.TrimSpace(f.Tax); s != "" {
		tax, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: tax %q is not a number", common.ErrValidation, s)
		}
		nl.Tax = tax
	}

	if s := strings.TrimSpace(f.Date); s != "" {
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrValidation, s)
		}
		nl.Date = &s
	}

	if s := strings.TrimSpace(f.Foto); s != "" {
		nl.Foto = &s
	}
	return nl, nil
}

// NewLineForm returns a form prefilled the way the create dialog opens:
// today's date and the default tax.
func NewLineForm(now time.Time) LineForm {
	return LineForm{
		Date: now.Format(DateLayout),
		Tax:  DefaultTax.String(),
	}
}
