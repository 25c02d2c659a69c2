// Command molsim simulates the Molineaux within-host parasite density model
// and checks its statistics against golden percentile tables.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/roach88/molsim/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
