package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/todo-sync/internal/bootstrap"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := bootstrap.InitLogger(*verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting todo-sync client",
		"identity_mode", cfg.Identity.Mode,
		"store_backend", cfg.Store.Backend,
		"dev", cfg.IsDev)

	provider, err := bootstrap.BuildIdentityProvider(bootstrap.IdentityBuildConfig{
		Identity: cfg.Identity,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	handle, err := bootstrap.BuildDurableStore(ctx, bootstrap.StoreBuildConfig{
		Store:  cfg.Store,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := handle.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close store failed", "error", cerr)
		}
	}()

	app := bootstrap.BuildApp(bootstrap.BuildConfig{
		Provider: provider,
		Store:    handle.Store,
		Logger:   logger,
	})
	app.Sessions.Start(ctx)

	repl := newREPL(app, os.Stdin, os.Stdout)
	return repl.Run(ctx)
}
