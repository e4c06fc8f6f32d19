package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/client/services"
	"github.com/dmitrijs2005/expensesheets/internal/common"
)

func (a *App) printSheets() {
	list := a.board.Sheets()
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No expense sheets yet. Use 'new' to create one.")
		return
	}
	for _, s := range list {
		fmt.Fprintln(a.out, renderSheetCard(s))
	}
}

// Sheets reloads and lists the profile's sheets.
func (a *App) Sheets(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if err := a.board.Reload(cctx); err != nil {
		return err
	}
	a.printSheets()
	return nil
}

// NewSheet runs the create form. The sheet starts pending.
func (a *App) NewSheet(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}
	if a.board.View() == services.ViewDetail {
		a.closeDetail()
	}
	if err := a.board.OpenCreate(); err != nil {
		return err
	}

	form, err := a.readSheetForm()
	if err != nil {
		a.board.CancelCreate()
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	id, err := a.board.Create(cctx, form)
	if err != nil {
		a.board.CancelCreate()
		return err
	}
	fmt.Fprintf(a.out, "Sheet #%d created.\n", id)
	return nil
}

func (a *App) readSheetForm() (models.SheetForm, error) {
	var f models.SheetForm
	var err error

	if f.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return f, err
	}
	if f.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return f, err
	}
	if f.Project, err = getSimpleText(a.reader, "Project", a.out); err != nil {
		return f, err
	}
	if f.CreateDate, err = getSimpleText(a.reader, "Creation date (empty for now)", a.out); err != nil {
		return f, err
	}
	if f.ApprovalDate, err = getSimpleText(a.reader, "Approval date (optional)", a.out); err != nil {
		return f, err
	}
	f.Status = models.StatusPending
	return f, nil
}

// Open shows a sheet and its lines.
func (a *App) Open(ctx context.Context, arg string) error {
	if err := a.requireHome(); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if !a.board.Loaded() {
		if err := a.board.Reload(cctx); err != nil {
			return err
		}
	}
	switch a.board.View() {
	case services.ViewDetail:
		a.closeDetail()
	case services.ViewCreating:
		a.board.CancelCreate()
	}

	s, err := a.board.Select(id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderSheetCard(*s))

	if err := a.lines.Activate(cctx, *s); err != nil {
		return err
	}
	a.printLines()
	return nil
}

func (a *App) closeDetail() {
	a.board.Close()
	a.lines.Deactivate()
}

// CloseSheet returns to the list.
func (a *App) CloseSheet(ctx context.Context) error {
	if a.board.View() != services.ViewDetail {
		return common.ErrNoSheetSelected
	}
	a.closeDetail()
	return nil
}

// DeleteSheet removes a sheet, closing it first when it is the open one.
func (a *App) DeleteSheet(ctx context.Context, arg string) error {
	if err := a.requireHome(); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if err := a.board.Delete(cctx, id); err != nil {
		return err
	}
	if s, ok := a.lines.Sheet(); ok && s.ID == id {
		a.lines.Deactivate()
	}
	fmt.Fprintf(a.out, "Sheet #%d deleted.\n", id)
	return nil
}
