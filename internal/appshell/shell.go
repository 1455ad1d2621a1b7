package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Command is a CLI entry point returning a process exit code.
type Command func(ctx context.Context, args []string, stdout, stderr io.Writer) int

// Main runs a command with a context cancelled on SIGINT/SIGTERM and exits
// with its code.
func Main(run Command) {
	os.Exit(execute(run, os.Args[1:], os.Stdout, os.Stderr))
}

// execute returns the command's own code. A signal that lands after the
// archive is committed does not turn a finished run into a failure.
func execute(run Command, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, stdout, stderr)
}
