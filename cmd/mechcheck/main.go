// Command mechcheck verifies collision-free crossings at a two-lane
// intersection by exhaustive state-space enumeration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/daslerpc/mech-checker/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
