package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"user_service/config"
	"user_service/pkg/db"

	"github.com/golang-migrate/migrate/v4"
	"github.com/sirupsen/logrus"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	logger := config.NewLogger("info", "text")

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StorageDriver == config.DriverMongo {
		logger.Fatalf("Storage driver %q has no schema migrations", cfg.StorageDriver)
	}

	m, err := db.NewMigrator(cfg.StorageDriver, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	runErr := run(m, args, logger)
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Warnf("Closing migrator: source=%v database=%v", srcErr, dbErr)
	}
	if runErr != nil {
		logger.Fatalf("%v", runErr)
	}
}

func run(m *migrate.Migrate, args []string, logger *logrus.Logger) error {
	switch command := args[0]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up failed: %w", err)
		}
		logger.Info("Migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: invalid steps argument %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("down failed: %w", err)
		}
		logger.WithField("steps", steps).Info("Migrations: down completed")

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("version failed: %w", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("force: version argument required")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force failed: %w", err)
		}
		logger.WithField("version", v).Info("Migrations: forced")

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (clears dirty state)

Environment:
  STORAGE_DRIVER    postgres, pgx or sqlite3 (default: postgres)
  DATABASE_URL      Required. Full database DSN.`)
}
