package main

import (
	"context"
	"os/signal"
	"syscall"

	"moviebot/whatsapp-bot/pkgs/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.RunCLI(ctx)
}
