// Command intakectl is the operator CLI for the intake service. It reads
// the same configuration as the server.
//
// Usage:
//
//	intakectl create-admin -email ops@example.com -username ops
//	intakectl mint-token -sub <user id> -role admin -ttl 1h
//	intakectl reindex
//	intakectl orphans
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
)

type command struct {
	summary string
	run     func(ctx context.Context, env *env, args []string) error
}

var commands = map[string]command{
	"create-admin": {"create an admin account", createAdmin},
	"mint-token":   {"mint an HS256 bearer token for development", mintToken},
	"reindex":      {"push every user and challenge into the search index", reindex},
	"orphans":      {"list documents left behind by failed submissions", orphans},
}

var errUsage = errors.New("usage")

// env carries the process streams so commands can be tested.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := run(ctx, e, os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "intakectl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		usage(e.stderr)
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(e.stderr, "unknown command %q\n\n", args[0])
		usage(e.stderr)
		return errUsage
	}
	return cmd.run(ctx, e, args[1:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: intakectl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}
}
