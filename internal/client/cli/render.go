package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/services"
	"github.com/schollz/progressbar/v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	statusColors = map[models.SheetStatus]lipgloss.Color{
		models.StatusPending:  lipgloss.Color("214"),
		models.StatusApproved: lipgloss.Color("42"),
		models.StatusRejected: lipgloss.Color("196"),
	}
)

func statusBadge(s models.StatusRef) string {
	name := s.Name
	if name == "" {
		name = s.ID.String()
	}
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := statusColors[s.ID]; ok {
		style = style.Foreground(c)
	}
	return style.Render(name)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(models.DateLayout)
}

// renderSheetCard draws one sheet with its status colour.
func renderSheetCard(s models.Sheet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", headerStyle.Render(fmt.Sprintf("#%d %s", s.ID, s.Title)), statusBadge(s.Status))
	if s.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", s.Project)
	}
	if s.Description != "" {
		fmt.Fprintf(&b, "%s\n", mutedStyle.Render(s.Description))
	}
	fmt.Fprintf(&b, "Total: %s  Created: %s  Approved: %s", s.TotalAmount.StringFixed(2), formatDate(&s.CreateDate), formatDate(s.ApprovalDate))

	border := lipgloss.Color("241")
	if c, ok := statusColors[s.Status.ID]; ok {
		border = c
	}
	return cardStyle.BorderForeground(border).Render(b.String())
}

type refNames interface {
	PaymentTypeName(id int64) string
	CategoryName(id int64) string
}

func orID(name string, id int64) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return name
}

func renderLine(l models.Line, refs refNames) string {
	amount := "-"
	if l.Amount != nil {
		amount = l.Amount.StringFixed(2)
	}
	date := "-"
	if l.Date != nil {
		date = *l.Date
	}
	attach := ""
	if l.Attachment() != "" {
		attach = " " + mutedStyle.Render("[receipt]")
	}
	return fmt.Sprintf("  %d. %s  %s  %s  tax %s%%  %s / %s%s",
		l.ID, l.Title, amount, date, l.Tax.String(),
		orID(refs.PaymentTypeName(l.PaymentTypeID), l.PaymentTypeID),
		orID(refs.CategoryName(l.CategoryID), l.CategoryID),
		attach)
}

func renderStats(st *models.DashboardStats) string {
	return fmt.Sprintf("Sheets: %d (pending %d, approved %d, rejected %d)  Lines: %d  Total: %s",
		st.TotalExpenseSheets, st.PendingSheets, st.ApprovedSheets, st.DeniedSheets,
		st.TotalExpenseLines, st.TotalAmount.StringFixed(2))
}

func renderTeam(v *services.TeamView) string {
	if v.Restricted {
		return "Team statistics are restricted to administrators."
	}
	if len(v.Members) == 0 {
		return "No employees report to you yet."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("Team") + "\n")
	for _, m := range v.Members {
		fmt.Fprintf(&b, "  %s: %s\n", m.Name, renderStats(&m.Stats))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRefs(title string, items []models.RefItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%d=%s", it.ID, it.Name))
	}
	return fmt.Sprintf("%s: %s", title, strings.Join(parts, ", "))
}

// newTransferBar draws byte progress for an upload or download; size -1
// renders a spinner.
func newTransferBar(w io.Writer, size int64, label string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}

// progress is the services.Progress used for attachment transfers.
func (a *App) progress(r io.Reader, size int64, label string) io.Reader {
	rd := progressbar.NewReader(r, newTransferBar(a.out, size, label))
	return &rd
}
