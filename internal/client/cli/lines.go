package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/expensesheets/internal/client/models"
	"github.com/dmitrijs2005/expensesheets/internal/common"
)

func (a *App) printLines() {
	list := a.lines.Lines()
	if len(list) == 0 {
		fmt.Fprintln(a.out, "  (no lines)")
	}
	for _, l := range list {
		fmt.Fprintln(a.out, renderLine(l, a.refs))
	}

	act := a.lines.Actions()
	var hints []string
	if act.CanAddLine {
		hints = append(hints, "addline", "delline <id>")
	}
	if act.CanApprove {
		hints = append(hints, "approve")
	}
	if act.CanReject {
		hints = append(hints, "reject")
	}
	if len(hints) > 0 {
		fmt.Fprintln(a.out, mutedStyle.Render(fmt.Sprintf("Actions: %v", hints)))
	}
}

// Lines reloads and lists the lines of the open sheet.
func (a *App) Lines(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if err := a.lines.Reload(cctx); err != nil {
		return err
	}
	a.printLines()
	return nil
}

// AddLine runs the line form on the open sheet. A failed receipt upload is
// reported but the line is kept.
func (a *App) AddLine(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}
	if s, ok := a.lines.Sheet(); !ok {
		return common.ErrNoSheetSelected
	} else if !s.Actions().CanAddLine {
		return fmt.Errorf("%w: lines can only be added while the sheet is pending", common.ErrSheetLocked)
	}

	form, err := a.readLineForm()
	if err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	res, err := a.lines.Create(cctx, form)
	if err != nil {
		return err
	}
	if res.UploadErr != nil {
		fmt.Fprintln(a.out, "Warning:", res.UploadErr)
	}
	fmt.Fprintf(a.out, "Line #%d added.\n", res.ID)
	a.printLines()
	return nil
}

func (a *App) readLineForm() (models.LineForm, error) {
	f := models.NewLineForm(a.now())
	var err error

	if f.Title, err = getSimpleText(a.reader, "Concept", a.out); err != nil {
		return f, err
	}
	if f.Amount, err = getSimpleText(a.reader, "Amount", a.out); err != nil {
		return f, err
	}
	if f.Date, err = GetTextOr(a.reader, "Date (YYYY-MM-DD)", f.Date, a.out); err != nil {
		return f, err
	}
	if f.Tax, err = GetTextOr(a.reader, "Tax %", f.Tax, a.out); err != nil {
		return f, err
	}

	fmt.Fprintln(a.out, renderRefs("Payment types", a.refs.PaymentTypes()))
	pt, err := getSimpleText(a.reader, "Payment type id", a.out)
	if err != nil {
		return f, err
	}
	if f.PaymentTypeID, err = parseOptionalID(pt); err != nil {
		return f, err
	}

	fmt.Fprintln(a.out, renderRefs("Categories", a.refs.Categories()))
	cat, err := getSimpleText(a.reader, "Category id", a.out)
	if err != nil {
		return f, err
	}
	if f.CategoryID, err = parseOptionalID(cat); err != nil {
		return f, err
	}

	if f.AttachmentPath, err = getSimpleText(a.reader, "Receipt file (optional)", a.out); err != nil {
		return f, err
	}
	return f, nil
}

// DeleteLine removes a line of the open, pending sheet.
func (a *App) DeleteLine(ctx context.Context, arg string) error {
	if err := a.requireHome(); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if err := a.lines.Delete(cctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Line #%d deleted.\n", id)
	a.printLines()
	return nil
}

func (a *App) Approve(ctx context.Context) error {
	return a.changeStatus(ctx, a.lines.Approve)
}

func (a *App) Reject(ctx context.Context) error {
	return a.changeStatus(ctx, a.lines.Reject)
}

func (a *App) changeStatus(ctx context.Context, fn func(context.Context) error) error {
	if err := a.requireHome(); err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if err := fn(cctx); err != nil {
		if errors.Is(err, common.ErrTransitionNotAllowed) {
			return fmt.Errorf("that action is not available for this sheet: %w", err)
		}
		return err
	}
	if s, ok := a.lines.Sheet(); ok {
		fmt.Fprintf(a.out, "Sheet #%d is now %s.\n", s.ID, statusBadge(s.Status))
	}
	return nil
}

// Download saves a line's receipt into the configured directory.
func (a *App) Download(ctx context.Context, arg string) error {
	if err := a.requireHome(); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if _, ok := a.lines.Sheet(); !ok {
		return common.ErrNoSheetSelected
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	path, err := a.lines.Download(cctx, id, a.config.DownloadDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved to", path)
	return nil
}
