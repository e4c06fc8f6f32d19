package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatusRef is the status joined onto a sheet by the server view.
type StatusRef struct {
	ID   SheetStatus `json:"id"`
	Name string      `json:"name"`
}

// Sheet is one row of the expense_sheets_with_status view. TotalAmount is
// aggregated from the sheet's lines on the server.
type Sheet struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Project      string          `json:"project"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreateDate   time.Time       `json:"create_date"`
	ApprovalDate *time.Time      `json:"approval_date,omitempty"`
	UserID       string          `json:"id_user"`
	Status       StatusRef       `json:"status"`
}

// Actions returns the affordances for the sheet's current status.
func (s *Sheet) Actions() Actions {
	return ActionsFor(s.Status.ID)
}

// SheetForm is what the user types when creating a sheet. Dates are free
// text and are passed through to the server.
type SheetForm struct {
	Title        string `validate:"required"`
	Description  string
	Project      string
	CreateDate   string
	ApprovalDate string
	Status       SheetStatus
}

// NewSheet is the insert payload for Expense_sheet. A nil ApprovalDate is
// sent as NULL.
type NewSheet struct {
	Title        string
	Description  string
	Project      string
	CreateDate   string
	ApprovalDate *string
	UserID       string
	StatusID     SheetStatus
}

// Build validates the form and produces the insert payload owned by ownerID.
func (f SheetForm) Build(ownerID string, now time.Time) (*NewSheet, error) {
	f.Title = strings.TrimSpace(f.Title)
	if err := Check(f); err != nil {
		return nil, err
	}

	ns := &NewSheet{
		Title:       f.Title,
		Description: f.Description,
		Project:     f.Project,
		CreateDate:  f.CreateDate,
		UserID:      ownerID,
		StatusID:    f.Status,
	}
	if strings.TrimSpace(ns.CreateDate) == "" {
		ns.CreateDate = now.UTC().Format(time.RFC3339)
	}
	if strings.TrimSpace(f.ApprovalDate) != "" {
		ad := f.ApprovalDate
		ns.ApprovalDate = &ad
	}
	if !ns.StatusID.Valid() {
		ns.StatusID = StatusPending
	}
	return ns, nil
}
