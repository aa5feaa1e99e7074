package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/invoiceportal/backend/internal/infrastructure/config"
	"github.com/invoiceportal/backend/internal/infrastructure/logger"
	"github.com/invoiceportal/backend/internal/infrastructure/migration"
)

func main() {
	var (
		migrationsPath = flag.String("path", "migrations", "Path to migrations directory")
		logLevel       = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  *logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// create and list operate on the filesystem only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(*migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Created migration",
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return
	case "list":
		migrations, err := migration.ListMigrations(*migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(migrations) == 0 {
			log.Info("No migrations found", zap.String("path", *migrationsPath))
			return
		}
		for _, m := range migrations {
			fmt.Println(m)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator, err := migration.New(db, *migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "step":
		if len(args) < 2 {
			log.Fatal("Usage: migrate step <n>")
		}
		n, parseErr := strconv.Atoi(args[1])
		if parseErr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = migrator.Steps(n)
	case "goto":
		if len(args) < 2 {
			log.Fatal("Usage: migrate goto <version>")
		}
		v, parseErr := strconv.ParseUint(args[1], 10, 32)
		if parseErr != nil {
			log.Fatal("Invalid version", zap.String("value", args[1]))
		}
		err = migrator.GoTo(uint(v))
	case "version":
		version, dirty, verr := migrator.Version()
		if verr != nil {
			log.Fatal("Failed to get version", zap.Error(verr))
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty),
		)
	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: migrate force <version>")
		}
		v, parseErr := strconv.Atoi(args[1])
		if parseErr != nil {
			log.Fatal("Invalid version", zap.String("value", args[1]))
		}
		err = migrator.Force(v)
	case "drop":
		if len(args) < 2 || args[1] != "-confirm" {
			log.Fatal("drop destroys all data; run: migrate drop -confirm")
		}
		err = migrator.Drop()
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`Usage: migrate [flags] <command>

Commands:
  up                       Apply all pending migrations
  down                     Roll back all migrations
  step <n>                 Apply n migrations (negative rolls back)
  goto <version>           Migrate to a specific version
  version                  Print the current migration version
  force <version>          Set the version without running migrations
  drop -confirm            Drop everything in the database
  create <name> [desc]     Create a new migration file pair
  list                     List migration files

Flags:
  -path string             Path to migrations directory (default "migrations")
  -log-level string        Log level (default "info")`)
}
