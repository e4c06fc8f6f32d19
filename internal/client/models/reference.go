package models

// RefItem is one row of a lookup table (status, payment type, category).
type RefItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReferenceTable names a lookup collection on the remote service.
type ReferenceTable string

const (
	TableSheetStatus ReferenceTable = "Sheet_status"
	TablePaymentType ReferenceTable = "Expense_payment_type"
	TableCategory    ReferenceTable = "Expense_category"
)

// ReferenceTables lists every lookup table the client caches.
var ReferenceTables = []ReferenceTable{TableSheetStatus, TablePaymentType, TableCategory}

// FindRef returns the name of id in items, or "" when absent.
func FindRef(items []RefItem, id int64) string {
	for _, it := range items {
		if it.ID == id {
			return it.Name
		}
	}
	return ""
}
