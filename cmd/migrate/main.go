package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	appjournal "github.com/erp/warehouse/internal/application/journal"
	appsession "github.com/erp/warehouse/internal/application/session"
	"github.com/erp/warehouse/internal/domain/session"
	"github.com/erp/warehouse/internal/infrastructure/config"
	"github.com/erp/warehouse/internal/infrastructure/logger"
	"github.com/erp/warehouse/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if command == "tables" {
		for _, m := range persistence.Models() {
			fmt.Printf("  - %T\n", m)
		}
		return
	}

	db, err := persistence.NewDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Maintenance CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
	)

	ctx := context.Background()
	journalService := appjournal.NewService(persistence.NewGormJournalRepository(db.DB), log)

	switch command {
	case "up":
		if err := db.Migrate(); err != nil {
			log.Fatal("Schema migration failed", zap.Error(err))
		}
		log.Info("Schema is up to date")

	case "down", "steps", "version", "force":
		runVersioned(db, command, args[1:], log)

	case "purge":
		days := cfg.Journal.RetentionDays
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				log.Fatal("Invalid retention days", zap.String("value", args[1]))
			}
			days = n
		}
		purged, err := journalService.PurgeExpired(ctx, days)
		if err != nil {
			log.Fatal("Journal purge failed", zap.Error(err))
		}
		log.Info("Journal purged", zap.Int("retention_days", days), zap.Int64("deleted", purged))

	case "clear-undo":
		tracker := appsession.NewTracker(session.NewState(), journalService, log)
		hidden, err := tracker.ClearUndoStack(ctx)
		if err != nil {
			log.Fatal("Failed to clear undo stack", zap.Error(err))
		}
		log.Info("Undo stack cleared", zap.Int64("hidden", hidden))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// runVersioned drives the postgres migrations directly
func runVersioned(db *persistence.Database, command string, args []string, log *zap.Logger) {
	m, err := db.Migrator()
	if err != nil {
		log.Fatal("Failed to open migrations", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch command {
	case "down":
		err = m.Down()
	case "steps":
		n, convErr := intArg(args)
		if convErr != nil {
			log.Fatal("steps needs a signed count", zap.Error(convErr))
		}
		err = m.Steps(n)
	case "force":
		n, convErr := intArg(args)
		if convErr != nil {
			log.Fatal("force needs a version", zap.Error(convErr))
		}
		err = m.Force(n)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to read migration version", zap.Error(verr))
		}
		log.Info("Migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[0])
}

func printUsage() {
	fmt.Println(`Warehouse database maintenance tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                 Create or update the schema (versioned SQL on postgres, model-derived on sqlite)
  down               Roll back every postgres migration
  steps <n>          Apply n postgres migrations, negative to roll back
  version            Print the applied postgres migration version
  force <version>    Mark a dirty postgres schema as the given version
  tables             List the tables owned by the service
  purge [days]       Delete journal entries older than days (default: journal.retention_days)
  clear-undo         Hide every undoable journal entry, keeping undo markers

Flags:
  -log-level string  Log level: debug, info, warn, error (default: info)

Environment Variables:
  ERP_DATABASE_DRIVER, ERP_DATABASE_PATH, ERP_DATABASE_HOST, ERP_DATABASE_PORT, ...

Examples:
  # Prepare a fresh database
  migrate up

  # Keep one week of history
  migrate purge 7`)
}
