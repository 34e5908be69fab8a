package main

import (
	"context"
	"os"
	"os/signal"
)

var version = "dev"

func main() {
	// Ctrl+C cancels the running session; the best plan so far is printed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(ctx, os.Stdout).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
