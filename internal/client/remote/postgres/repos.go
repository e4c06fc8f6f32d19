package postgres

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/expensesheets/internal/dbx"
)

// repos groups the per-collection repositories bound to one transaction.
type repos struct {
	organizations *OrganizationRepository
	employees     *EmployeeRepository
	sheets        *SheetRepository
	lines         *LineRepository
	references    *ReferenceRepository
	stats         *StatsRepository
}

func newRepos(db dbx.DBTX) *repos {
	return &repos{
		organizations: NewOrganizationRepository(db),
		employees:     NewEmployeeRepository(db),
		sheets:        NewSheetRepository(db),
		lines:         NewLineRepository(db),
		references:    NewReferenceRepository(db),
		stats:         NewStatsRepository(db),
	}
}

// placeholders returns "$start, $start+1, ..." for n arguments.
func placeholders(start, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}
