package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shoppinglist-api/internal/cli"
	"shoppinglist-api/internal/logging"
)

func main() {
	logConfig := logging.NewLogConfigFromEnv()
	// stdout belongs to command output
	logConfig.Stderr = true
	if os.Getenv("LOG_LEVEL") == "" {
		logConfig.Level = "warn"
	}
	logging.InitLogger(logConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New(&cli.App{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
