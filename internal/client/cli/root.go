package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensesheets/internal/client/services"
)

func (a *App) getStatus() string {
	var parts []string

	if u := a.auth.User(); u != nil {
		parts = append(parts, u.Email)
	}
	parts = append(parts, a.route().String())
	if s, ok := a.board.Current(); ok {
		parts = append(parts, fmt.Sprintf("#%d", s.ID))
	}

	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// Root restores the session, starts the background session watchers and
// blocks in the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Expense sheets CLI (type 'help' for commands)")

	updates, cancel := a.auth.Subscribe()
	defer cancel()

	ictx, icancel := a.command(ctx)
	if err := a.auth.Init(ictx); err != nil {
		fmt.Fprintln(a.out, "Could not reach the auth service, using the cached session:", describeError(err))
	}
	icancel()
	a.syncIdentity(ctx)

	wctx, wcancel := context.WithCancel(ctx)
	defer wcancel()
	go func() {
		if err := a.auth.Run(wctx); err != nil && wctx.Err() == nil {
			a.logger.Error(wctx, "session watcher stopped", "error", err)
		}
	}()
	go a.watchIdentity(wctx, updates)

	a.greet()
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) greet() {
	switch a.route() {
	case services.RouteSignIn:
		fmt.Fprintln(a.out, "Please 'login' or 'signup'.")
	case services.RouteOnboarding:
		fmt.Fprintln(a.out, "Your account is not linked to an organization. Run 'onboard'.")
	case services.RouteHome:
		if p := a.auth.Profile(); p != nil {
			fmt.Fprintf(a.out, "Welcome back, %s.\n", p.Name)
		}
	}
}
