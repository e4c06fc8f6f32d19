package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/expensesheets/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	route() services.Route

	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	Onboard(ctx context.Context) error

	Home(ctx context.Context) error
	Team(ctx context.Context) error
	Sheets(ctx context.Context) error
	NewSheet(ctx context.Context) error
	Open(ctx context.Context, arg string) error
	CloseSheet(ctx context.Context) error
	DeleteSheet(ctx context.Context, arg string) error

	Lines(ctx context.Context) error
	AddLine(ctx context.Context) error
	DeleteLine(ctx context.Context, arg string) error
	Approve(ctx context.Context) error
	Reject(ctx context.Context) error
	Download(ctx context.Context, arg string) error
	Refresh(ctx context.Context) error
}

var helpByRoute = map[services.Route]string{
	services.RouteSignIn:     "Available commands: login, signup, exit",
	services.RouteOnboarding: "Available commands: onboard, logout, exit",
	services.RouteHome: "Available commands: home, team, sheets, new, open <id>, close, delsheet <id>, " +
		"lines, addline, delline <id>, approve, reject, download <lineID>, refresh, logout, exit",
}

// runREPL starts a simple read–eval–print loop for the expense sheets CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. Commands that take an id read it from the
// second token. The loop exits on EOF or when the user types "exit" or
// "quit".
//
// The prompt shows the current status (from statusFn). Errors returned by
// command handlers are printed with describeError and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("expenses %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpByRoute[a.route()])

		case "login":
			cmdErr = a.Login(ctx)
		case "signup":
			cmdErr = a.Signup(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "onboard":
			cmdErr = a.Onboard(ctx)

		case "home":
			cmdErr = a.Home(ctx)
		case "team":
			cmdErr = a.Team(ctx)
		case "sheets":
			cmdErr = a.Sheets(ctx)
		case "new":
			cmdErr = a.NewSheet(ctx)
		case "open", "delsheet", "delline", "download":
			if arg == "" {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "open":
				cmdErr = a.Open(ctx, arg)
			case "delsheet":
				cmdErr = a.DeleteSheet(ctx, arg)
			case "delline":
				cmdErr = a.DeleteLine(ctx, arg)
			case "download":
				cmdErr = a.Download(ctx, arg)
			}
		case "close":
			cmdErr = a.CloseSheet(ctx)

		case "lines":
			cmdErr = a.Lines(ctx)
		case "addline":
			cmdErr = a.AddLine(ctx)
		case "approve":
			cmdErr = a.Approve(ctx)
		case "reject":
			cmdErr = a.Reject(ctx)
		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describeError(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
