package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/target/todo-sync/config"
	"github.com/target/todo-sync/internal/bootstrap"
	"github.com/target/todo-sync/internal/domain/todo"
	apperrors "github.com/target/todo-sync/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"dump": {
			name:        "dump",
			description: "Print the stored todo collection for a user",
			run:         runDump,
		},
		"seed": {
			name:        "seed",
			description: "Write a todo collection for a user from a JSON file or stdin",
			run:         runSeed,
		},
		"migrate": {
			name:        "migrate",
			description: "Create the Postgres key/value table (postgres backend only)",
			run:         runMigrate,
		},
		"backends": {
			name:        "backends",
			description: "Report the configured store backend and whether it is reachable",
			run:         runBackends,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: todo-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(os.Stdout, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func runDump(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	userID := fs.String("user", "", "user ID whose todos to dump")
	raw := fs.Bool("raw", false, "print the raw stored value instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("dump requires -user")
	}

	handle, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(ctx, handle)

	value, err := handle.Store.Get(ctx.Ctx, todo.StorageKey(*userID))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return writef(os.Stdout, "no stored todos for user %s\n", *userID)
		}
		return err
	}

	if *raw {
		return writef(os.Stdout, "%s\n", value)
	}

	collection, err := todo.Decode(value)
	if err != nil {
		return fmt.Errorf("stored value for user %s is not a todo collection: %w", *userID, err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tDONE\tTEXT\n"); err != nil {
		return err
	}
	for _, item := range collection {
		done := " "
		if item.Completed {
			done = "x"
		}
		if err := writef(w, "%s\t[%s]\t%s\n", item.ID, done, item.Text); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runSeed(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	userID := fs.String("user", "", "user ID to seed todos for")
	file := fs.String("file", "-", "JSON file with a todo array, or - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" {
		return fmt.Errorf("seed requires -user")
	}

	data, err := readInput(*file)
	if err != nil {
		return err
	}

	// Validate before writing so a typo cannot corrupt the stored value.
	collection, err := todo.Decode(string(data))
	if err != nil {
		return fmt.Errorf("input is not a todo collection: %w", err)
	}
	encoded, err := collection.Encode()
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}

	handle, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(ctx, handle)

	if err := handle.Store.Set(ctx.Ctx, todo.StorageKey(*userID), encoded); err != nil {
		return err
	}
	return writef(os.Stdout, "seeded %d todos for user %s\n", len(collection), *userID)
}

func runMigrate(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if ctx.Config.Store.Backend != config.StoreBackendPostgres {
		return fmt.Errorf("migrate only applies to the postgres backend (configured: %s)", ctx.Config.Store.Backend)
	}

	// BuildDurableStore runs the migration when RunMigrationsOnStart is set.
	ctx.Config.Store.Postgres.RunMigrationsOnStart = true
	handle, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(ctx, handle)

	return writef(os.Stdout, "migration complete\n")
}

func runBackends(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("backends", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Connecting is the health check: redis and postgres backends ping on
	// open, the file backend verifies its directory.
	handle, err := openStore(ctx)
	if err != nil {
		return writef(os.Stdout, "backend %s: unreachable (%v)\n", ctx.Config.Store.Backend, err)
	}
	defer closeStore(ctx, handle)

	return writef(os.Stdout, "backend %s: ok\n", ctx.Config.Store.Backend)
}

func openStore(ctx *commandContext) (*bootstrap.StoreHandle, error) {
	return bootstrap.BuildDurableStore(ctx.Ctx, bootstrap.StoreBuildConfig{
		Store:  ctx.Config.Store,
		Logger: ctx.Logger,
	})
}

func closeStore(ctx *commandContext, handle *bootstrap.StoreHandle) {
	if err := handle.Close(); err != nil {
		ctx.Logger.ErrorContext(ctx.Ctx, "close store failed", "error", err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
