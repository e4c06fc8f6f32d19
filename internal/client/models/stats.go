package models

import "github.com/shopspring/decimal"

// DashboardStats is one row of the expense_dashboard_stats view. UserID is
// the employee id the counters belong to.
type DashboardStats struct {
	UserID             string          `json:"id_user"`
	AdminID            *string         `json:"id_admin,omitempty"`
	TotalExpenseSheets int64           `json:"total_expense_sheets"`
	TotalExpenseLines  int64           `json:"total_expense_lines"`
	ApprovedSheets     int64           `json:"approved_sheets"`
	PendingSheets      int64           `json:"pending_sheets"`
	DeniedSheets       int64           `json:"denied_sheets"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
}

// TeamMember pairs an employee's counters with the employee name.
type TeamMember struct {
	Name  string
	Stats DashboardStats
}
