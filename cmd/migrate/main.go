package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"bank-dashboard/internal/config"
	"bank-dashboard/internal/database"
	"bank-dashboard/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: migrate [flags] up | down <steps> | status | seed")
		fs.PrintDefaults()
	}

	migrationsPath := fs.String("path", "db/migrations", "Directory holding migration files")
	seedsPath := fs.String("seeds", "db/seeds", "Directory holding seed files")
	envFile := fs.String("env", ".env", "Optional dotenv file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	_ = godotenv.Load(*envFile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.NewWithWriter(stderr, cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runner := database.NewMigrationRunner(db,
		database.WithMigrationsPath(*migrationsPath),
		database.WithSeedsPath(*seedsPath),
		database.WithSeeding(true),
		database.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := runner.WaitForDatabase(ctx); err != nil {
		return err
	}

	switch cmd := fs.Arg(0); cmd {
	case "up":
		if err := runner.RunMigrations(); err != nil {
			return err
		}
	case "down":
		steps := 1
		if fs.NArg() > 1 {
			steps, err = strconv.Atoi(fs.Arg(1))
			if err != nil || steps <= 0 {
				return fmt.Errorf("invalid step count %q", fs.Arg(1))
			}
		}
		if err := runner.RollbackMigrations(steps); err != nil {
			return err
		}
	case "seed":
		if err := runner.LoadSeeds(); err != nil {
			return err
		}
	case "status":
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	version, dirty, err := runner.GetMigrationStatus()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(stdout, "no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read migration status: %w", err)
	}
	fmt.Fprintf(stdout, "version %d dirty=%t\n", version, dirty)
	return nil
}
