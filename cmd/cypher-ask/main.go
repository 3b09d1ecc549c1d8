package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/honeycarbs/cypher-ask/pkg/shutdown"
)

const (
	exitOK    = 0
	exitError = 1
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command tree and maps its outcome to a process exit code
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	ctx, stop := shutdown.NotifyContext(ctx)
	defer stop()

	cmd := newRootCmd(in, out)
	cmd.SetArgs(args)
	cmd.SetErr(errOut)

	return exitCode(cmd.ExecuteContext(ctx), errOut)
}

func exitCode(err error, errOut io.Writer) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return exitOK
	case errors.Is(err, errReported):
		return exitError
	default:
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitError
	}
}
