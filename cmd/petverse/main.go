// Command petverse es la CLI del cliente PetVerse.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"petverse/internal/cli/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// los cli.Exit ya terminan el proceso con su código; aquí llegan errores de parseo
	if err := command.App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
