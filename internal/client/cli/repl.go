package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	List(ctx context.Context) error
	Import(ctx context.Context, args []string) error
	AddSigner(ctx context.Context, args []string) error
	Switch(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Unlock(ctx context.Context, args []string) error
	Sign(ctx context.Context, args []string) error
	Backup(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: list, import, addsigner, switch, remove, backup, restore, exit"
	helpLoggedIn  = "Available commands: (l)ist, import, addsigner, switch, remove, logout, unlock, sign, backup, restore, exit"
)

// runREPL reads commands from reader until EOF, "exit"/"quit" or ctx is
// done, and dispatches them to a. The prompt shows statusFn.
//
// Handlers report their own errors to the user; the loop ignores them so a
// failed command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("hk %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil || ctx.Err() != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "l", "list":
			_ = a.List(ctx)

		case "import":
			_ = a.Import(ctx, args)

		case "addsigner":
			_ = a.AddSigner(ctx, args)

		case "switch":
			_ = a.Switch(ctx, args)

		case "remove":
			_ = a.Remove(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "unlock":
			_ = a.Unlock(ctx, args)

		case "sign":
			_ = a.Sign(ctx, args)

		case "backup":
			_ = a.Backup(ctx)

		case "restore":
			_ = a.Restore(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
