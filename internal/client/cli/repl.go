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

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Feed(ctx context.Context) error
	Refresh(ctx context.Context) error
	Permission(ctx context.Context, answer string) error
	Camera(ctx context.Context) error
	Capture(ctx context.Context) error
	Open(ctx context.Context, uri string) error
	Send(ctx context.Context) error
	Dismiss(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// It returns on EOF, on "exit" or "quit", or when ctx ends. Command errors
// are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("snaplet %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: feed, refresh, permission grant|deny, camera, capture, open <uri>, send, dismiss, whoami, status, logout, exit")
			} else {
				printlnFn("Available commands: login, open <uri>, status, exit")
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "feed":
			cmdErr = a.Feed(ctx)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "permission":
			if len(args) != 1 || (args[0] != "grant" && args[0] != "deny") {
				printlnFn("Usage: permission grant|deny")
				continue
			}
			cmdErr = a.Permission(ctx, args[0])

		case "camera":
			cmdErr = a.Camera(ctx)

		case "capture":
			cmdErr = a.Capture(ctx)

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <uri>")
				continue
			}
			cmdErr = a.Open(ctx, args[0])

		case "send":
			cmdErr = a.Send(ctx)

		case "dismiss":
			cmdErr = a.Dismiss(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
