// Command tracegen writes randomized ADD/GET/REMOVE/REVERSE traces with
// expected results for a prefix-forwarding store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mesh-intelligence/tracegen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
