package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Gunvolt24/autoagent/config"
	"github.com/Gunvolt24/autoagent/internal/app"
)

// Дашборд дилера: приём пересланных заявок (HTTP или Kafka) и их просмотр.
func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadDashboard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.BootstrapDashboard(ctx, &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := a.Run(ctx); err != nil {
		a.Logger.Errorf(ctx, "dashboard stopped with error: %v", err)
		cleanup()
		os.Exit(1)
	}
}
