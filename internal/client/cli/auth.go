package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensesheets/internal/client/services"
	"github.com/dmitrijs2005/expensesheets/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	if email == "" {
		return "", nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	if len(password) == 0 {
		return "", nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return email, password, nil
}

// Login prompts for credentials and signs in. The password is wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	if a.route() != services.RouteSignIn {
		return fmt.Errorf("%w: already signed in, 'logout' first", common.ErrInvalidState)
	}

	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	cctx, cancel := a.command(ctx)
	defer cancel()

	if _, err := a.auth.SignIn(cctx, email, string(password)); err != nil {
		a.logger.Info(ctx, "login unsuccessful", "error", err)
		return err
	}
	a.syncIdentity(cctx)

	fmt.Fprintln(a.out, "Signed in as", email)
	a.greet()
	return nil
}

// Signup creates an account. When the service asks for e-mail confirmation
// no session is started.
func (a *App) Signup(ctx context.Context) error {
	if a.route() != services.RouteSignIn {
		return fmt.Errorf("%w: already signed in, 'logout' first", common.ErrInvalidState)
	}

	email, password, err := a.credentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	cctx, cancel := a.command(ctx)
	defer cancel()

	sess, err := a.auth.SignUp(cctx, email, string(password))
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Fprintln(a.out, "Check your inbox to confirm the address, then 'login'.")
		return nil
	}
	a.syncIdentity(cctx)

	fmt.Fprintln(a.out, "Account created, signed in as", email)
	a.greet()
	return nil
}

// Logout always clears the local session; a remote failure is reported.
func (a *App) Logout(ctx context.Context) error {
	cctx, cancel := a.command(ctx)
	defer cancel()

	err := a.auth.SignOut(cctx)
	a.syncIdentity(cctx)
	fmt.Fprintln(a.out, "Signed out.")
	return err
}

// Onboard links the signed-in user to an organization by tax code.
func (a *App) Onboard(ctx context.Context) error {
	switch a.route() {
	case services.RouteSignIn:
		return common.ErrNoSession
	case services.RouteHome:
		return fmt.Errorf("%w: profile already set up", common.ErrInvalidState)
	}

	code, err := getSimpleText(a.reader, "Enter organization code (VAT number)", a.out)
	if err != nil {
		return err
	}

	cctx, cancel := a.command(ctx)
	defer cancel()

	org, err := a.onboard.ValidateCode(cctx, strings.ToUpper(code))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Organization: %s (%s)\n", org.Name, org.City)

	name, err := getSimpleText(a.reader, "Enter your full name", a.out)
	if err != nil {
		a.onboard.Reset()
		return err
	}

	e, err := a.onboard.Complete(cctx, name)
	if err != nil {
		return err
	}
	a.syncIdentity(cctx)

	fmt.Fprintf(a.out, "Welcome, %s.\n", e.Name)
	return nil
}

func (a *App) requireHome() error {
	switch a.route() {
	case services.RouteSignIn:
		return common.ErrNoSession
	case services.RouteOnboarding:
		return common.ErrNoProfile
	}
	return nil
}
