// Command migrate applies, rolls back and inspects database schema migrations.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/stockflow/backend/internal/infrastructure/config"
	"github.com/stockflow/backend/internal/infrastructure/logger"
	"github.com/stockflow/backend/internal/infrastructure/migration"
)

func main() {
	var (
		path = flag.String("path", "migrations", "path to migration files")
		dsn  = flag.String("dsn", "", "database URL (defaults to the application config)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer log.Sync() //nolint:errcheck

	databaseURL := *dsn
	if databaseURL == "" {
		databaseURL = cfg.Database.DSN()
	}

	migrator, err := migration.NewFromURL(databaseURL, *path, log)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer migrator.Close() //nolint:errcheck

	if err := dispatch(migrator, flag.Args()); err != nil {
		log.Fatal("migration command failed", zap.Error(err))
	}
}

func dispatch(migrator *migration.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	case "steps":
		if len(args) < 2 {
			return fmt.Errorf("steps requires a count, e.g. 'steps -1'")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[1], err)
		}
		return migrator.Steps(n)
	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d dirty: %v\n", version, dirty)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return migrator.Force(v)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up              apply all pending migrations
  down            roll back one migration
  steps <n>       apply n migrations (negative rolls back)
  version         print the current schema version
  force <v>       force the schema version without running migrations

Flags:
`)
	flag.PrintDefaults()
}
