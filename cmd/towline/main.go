package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/towline/internal/cli"
)

// Injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	os.Exit(cli.Execute(ctx))
}
