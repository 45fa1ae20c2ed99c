package repository

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	readingsTable       = "pac3200_readings"
	readingsBackupTable = "pac3200_readings_backup"
)

// schemaVersion is the version the migrations below converge on. Bumping it
// (with a new readings migration) destroys the existing readings table on the
// next Init: schema evolution of the readings layout is deliberately lossy.
const schemaVersion = 2

// schemaInfo is the single-row table recording which schema version the
// database is at. The version is always read from here, never inferred from
// the shape of the data tables.
type schemaInfo struct {
	ID      int `gorm:"primaryKey"`
	Version int `gorm:"not null"`
}

func (schemaInfo) TableName() string {
	return "schema_info"
}

type migration struct {
	version int
	name    string
	apply   func(db *gorm.DB) error
}

var migrations = []migration{
	{1, "create meters_config", migrateCreateMetersConfig},
	{2, "recreate pac3200_readings", migrateRecreateReadings},
}

// Init brings the database schema up to the current version. It is
// idempotent: at the current version it changes nothing. Databases that
// predate versioning get their readings table backed up (if it holds rows)
// or dropped before the migrations run; applying a readings migration drops
// and recreates the readings table, so rows survive a version bump only via
// that backup path.
func (r *Repository) Init() error {
	if err := r.db.AutoMigrate(&schemaInfo{}); err != nil {
		return fmt.Errorf("migrate schema_info: %w", err)
	}

	var info schemaInfo
	if err := r.db.Limit(1).Find(&info).Error; err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := info.Version

	if version == 0 {
		if err := r.backupLegacyReadings(); err != nil {
			return fmt.Errorf("backup legacy readings: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := m.apply(r.db); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if err := r.setSchemaVersion(m.version); err != nil {
			return fmt.Errorf("record schema version %d: %w", m.version, err)
		}
		version = m.version
		r.logger.Info("Applied schema migration", "version", m.version, "name", m.name)
	}

	return nil
}

// SchemaVersion returns the version recorded in the database, zero when the
// database has never been initialised.
func (r *Repository) SchemaVersion() (int, error) {
	if !r.db.Migrator().HasTable(&schemaInfo{}) {
		return 0, nil
	}
	var info schemaInfo
	if err := r.db.Limit(1).Find(&info).Error; err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return info.Version, nil
}

func (r *Repository) setSchemaVersion(version int) error {
	res := r.db.Model(&schemaInfo{}).Where("id = ?", 1).Update("version", version)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.db.Create(&schemaInfo{ID: 1, Version: version}).Error
	}
	return nil
}

// backupLegacyReadings handles databases created before schema versioning
// existed. A readings table holding rows is renamed out of the way rather
// than destroyed; an empty one is simply dropped.
func (r *Repository) backupLegacyReadings() error {
	mig := r.db.Migrator()
	if !mig.HasTable(readingsTable) {
		return nil
	}

	var count int64
	if err := r.db.Table(readingsTable).Count(&count).Error; err != nil {
		return fmt.Errorf("count legacy readings: %w", err)
	}
	if count == 0 {
		return mig.DropTable(readingsTable)
	}

	if mig.HasTable(readingsBackupTable) {
		if err := mig.DropTable(readingsBackupTable); err != nil {
			return fmt.Errorf("drop stale backup: %w", err)
		}
	}
	if err := mig.RenameTable(readingsTable, readingsBackupTable); err != nil {
		return fmt.Errorf("rename legacy readings: %w", err)
	}

	r.logger.Warn("Renamed legacy readings table", "backup", readingsBackupTable, "rows", count)
	return nil
}

func migrateCreateMetersConfig(db *gorm.DB) error {
	return db.AutoMigrate(&StoredMeterConfig{})
}

func migrateRecreateReadings(db *gorm.DB) error {
	mig := db.Migrator()
	if mig.HasTable(readingsTable) {
		if err := mig.DropTable(readingsTable); err != nil {
			return fmt.Errorf("drop readings table: %w", err)
		}
	}
	if err := db.AutoMigrate(&StoredReading{}); err != nil {
		return fmt.Errorf("create readings table: %w", err)
	}
	// descending timestamp within meter supports the "most recent N" scans
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_readings_meter_timestamp ON pac3200_readings(meter_id, timestamp DESC)",
	).Error
}
