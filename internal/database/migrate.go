package database

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/HammerMeetNail/braincast/internal/logging"
)

type Migrator struct {
	m *migrate.Migrate
}

// migrateLogger forwards golang-migrate progress to the structured logger.
type migrateLogger struct {
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	logging.Info("migrate", logging.Fields{"detail": strings.TrimSpace(fmt.Sprintf(format, v...))})
}

func (l migrateLogger) Verbose() bool {
	return l.verbose
}

// NewMigrator reads migrations from dir on disk and applies them to dsn.
func NewMigrator(dsn, dir string, verbose bool) (*Migrator, error) {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	m.Log = migrateLogger{verbose: verbose}
	return &Migrator{m: m}, nil
}

// Up applies pending migrations. An up-to-date schema is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration. A database with nothing
// applied is left alone.
func (m *Migrator) Down() error {
	err := m.m.Steps(-1)
	if err == nil || errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("rolling back migration: %w", err)
}

// Version reports the applied version. A fresh database reports 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
