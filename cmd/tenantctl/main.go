// Command tenantctl drives a barberiq tenant session from the shell: it
// resolves barbershops, checks slugs and lists tenant-scoped records through
// the same cache, resolver and stores an embedding client uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "tenantctl:", err)
		os.Exit(1)
	}
}
