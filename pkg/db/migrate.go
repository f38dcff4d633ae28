package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"

	"user_service/migrations"
)

// NewMigrator returns a migrate instance for driver's embedded migration set.
// The caller owns the returned value and must Close it.
func NewMigrator(driver, dsn string, logger *logrus.Logger) (*migrate.Migrate, error) {
	dir, url, err := migrationTarget(driver, dsn)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("migration init failed: %w", err)
	}
	m.Log = &migrateLogger{log: logger}
	return m, nil
}

// Migrate applies all pending migrations.
func Migrate(driver, dsn string, logger *logrus.Logger) error {
	m, err := NewMigrator(driver, dsn, logger)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warnf("Closing migrator: source=%v database=%v", srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", err)
	}
	logger.Infof("Database schema at version %d (dirty=%v)", version, dirty)
	return nil
}

func migrationTarget(driver, dsn string) (dir, url string, err error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		return "postgres", dsn, nil
	case DriverSQLite:
		if strings.Contains(dsn, ":memory:") {
			return "", "", fmt.Errorf("in-memory sqlite databases cannot be migrated through a separate connection")
		}
		return "sqlite3", "sqlite3://" + strings.TrimPrefix(dsn, "file:"), nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

type migrateLogger struct {
	log *logrus.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.log.Infof("migrate: "+strings.TrimSuffix(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.log.IsLevelEnabled(logrus.DebugLevel)
}
