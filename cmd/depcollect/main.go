// Command depcollect resolves the transitive dependencies of Maven artifacts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/depcollect/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New(os.Stderr, cli.LogInfo).Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
