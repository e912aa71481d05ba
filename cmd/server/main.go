package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"hrdesk/internal/app/server"
	"hrdesk/internal/platform/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, envFile string
	var migrateOnly bool

	flags := pflag.NewFlagSet("hrdesk", pflag.ContinueOnError)
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (environment is used when empty)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	flags.BoolVar(&migrateOnly, "migrate-only", false, "apply migrations and seed data, then exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if migrateOnly {
		slog.Info("migrations applied", "dir", cfg.MigrationsDir)
		return nil
	}
	return app.Run(ctx)
}
