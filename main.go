package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sam1101-sys/reconkit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(cli.Execute(ctx))
}
