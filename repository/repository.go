package repository

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Repository persists meter configuration and readings to a local SQLite
// database. It owns the schema (see Init) and answers the time-series queries
// the rest of the system is built on.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New opens (or creates) the database at path. Call Init before using the
// returned repository.
func New(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Repository{
		db:     db,
		logger: slog.Default().With("database", path),
	}, nil
}

// Reset destroys every table, including the legacy backup and the meter
// configuration, and reinitialises the schema from scratch. All history is
// lost; this exists for operator-driven resets only.
func (r *Repository) Reset() error {
	tables := []string{
		readingsTable,
		readingsBackupTable,
		"meters_config",
		"schema_info",
	}
	mig := r.db.Migrator()
	for _, table := range tables {
		if !mig.HasTable(table) {
			continue
		}
		if err := mig.DropTable(table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	r.logger.Warn("Database reset, all readings and meter configuration dropped")
	return r.Init()
}
