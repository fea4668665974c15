// Command taskctl performs administrative tasks against the configured
// store: creating users, which the API only reads, and minting access
// tokens for them.
//
// Usage:
//
//	taskctl create-user -email ana@example.com -name Ana [-telegram-chat-id 12345]
//	taskctl token -user <uuid>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "create-user":
		return runCreateUser(ctx, args[1:], out)
	case "token":
		return runToken(ctx, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

var errUsage = errors.New("usage: taskctl <create-user|token> [flags]")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
