package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	consumeRelogin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	PhoneLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Avatar(ctx context.Context, path string) error

	Latest(ctx context.Context) error
	More(ctx context.Context) error
	Mine(ctx context.Context, more bool) error
	Show(ctx context.Context, id string) error
	Publish(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Hot(ctx context.Context, more bool) error

	Search(ctx context.Context, query string) error
	HotTerms(ctx context.Context) error

	Admin(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, phonelogin, latest, more, hot, show <id>, search <q>, hotterms, exit"
	helpLoggedIn  = "Available commands: latest, more, hot [more], show <id>, search <q>, hotterms, " +
		"publish, mine [more], delete <id>, profile, editprofile, avatar <file>, whoami, " +
		"admin list|audit|tag|delete, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit".
//
// When the client has dropped the session since the last prompt, the login
// flow runs before the next command is read. Command errors are reported to
// the user and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if a.consumeRelogin() {
			report(a.Login(ctx))
		}

		printlnFn(fmt.Sprintf("quzhan %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
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
				printlnFn(helpAnonymous)
			}

		case "register":
			report(a.Register(ctx))
		case "login":
			report(a.Login(ctx))
		case "phonelogin":
			report(a.PhoneLogin(ctx))
		case "logout":
			report(a.Logout(ctx))
		case "whoami":
			report(a.WhoAmI(ctx))

		case "profile":
			report(a.Profile(ctx))
		case "editprofile":
			report(a.EditProfile(ctx))
		case "avatar":
			if len(args) != 1 {
				printlnFn("Usage: avatar <file>")
				continue
			}
			report(a.Avatar(ctx, args[0]))

		case "l", "latest":
			report(a.Latest(ctx))
		case "more":
			report(a.More(ctx))
		case "mine":
			report(a.Mine(ctx, len(args) > 0 && args[0] == "more"))
		case "hot":
			report(a.Hot(ctx, len(args) > 0 && args[0] == "more"))
		case "show":
			if len(args) != 1 {
				printlnFn("Usage: show <id>")
				continue
			}
			report(a.Show(ctx, args[0]))
		case "publish":
			report(a.Publish(ctx))
		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			report(a.Delete(ctx, args[0]))

		case "search":
			if len(args) == 0 {
				printlnFn("Usage: search <query>")
				continue
			}
			report(a.Search(ctx, strings.Join(args, " ")))
		case "hotterms":
			report(a.HotTerms(ctx))

		case "admin":
			report(a.Admin(ctx, args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
