package cli

import (
	"context"
	"fmt"
)

// Home prints the dashboard counters of the current profile.
func (a *App) Home(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	st, err := a.stats.Dashboard(cctx)
	if err != nil {
		return err
	}

	p := a.auth.Profile()
	fmt.Fprintln(a.out, headerStyle.Render(p.Name))
	fmt.Fprintln(a.out, renderStats(st))
	return nil
}

// Team prints the statistics of the employees administered by the profile.
func (a *App) Team(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	v, err := a.stats.Team(cctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderTeam(v))
	return nil
}

// Refresh reloads the reference tables, the sheet list and the open sheet.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.requireHome(); err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	if err := a.refs.Refresh(cctx); err != nil {
		fmt.Fprintln(a.out, "Some lookup tables could not be loaded:", describeError(err))
	}
	if err := a.board.Reload(cctx); err != nil {
		return err
	}
	if _, ok := a.lines.Sheet(); ok {
		if cur, ok := a.board.Current(); ok {
			if err := a.lines.Activate(cctx, *cur); err != nil {
				return err
			}
		}
		if err := a.lines.Reload(cctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "%d sheet(s) loaded.\n", len(a.board.Sheets()))
	return nil
}
