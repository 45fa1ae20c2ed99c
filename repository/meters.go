package repository

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// UpsertMeterConfig inserts the configuration row for a meter, replacing any
// existing row with the same meter id and refreshing its updated timestamp.
func (r *Repository) UpsertMeterConfig(cfg StoredMeterConfig) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "meter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "host", "port", "unit_id", "timeout_secs",
			"location", "description", "updated_at",
		}),
	}).Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("upsert meter config: %w", err)
	}
	return nil
}

// DeleteMeterConfig removes a meter's configuration row. The meter's
// historical readings are deliberately retained (no cascade).
func (r *Repository) DeleteMeterConfig(meterID string) error {
	err := r.db.Where("meter_id = ?", meterID).Delete(&StoredMeterConfig{}).Error
	if err != nil {
		return fmt.Errorf("delete meter config: %w", err)
	}
	return nil
}

// GetMeterConfig returns one meter's configuration row; found is false when
// no such meter is configured.
func (r *Repository) GetMeterConfig(meterID string) (StoredMeterConfig, bool, error) {
	var cfgs []StoredMeterConfig
	err := r.db.Where("meter_id = ?", meterID).Limit(1).Find(&cfgs).Error
	if err != nil {
		return StoredMeterConfig{}, false, fmt.Errorf("query meter config: %w", err)
	}
	if len(cfgs) == 0 {
		return StoredMeterConfig{}, false, nil
	}
	return cfgs[0], true, nil
}

// ListMeterConfigs returns every configured meter, ordered by id. A database
// where the configuration table does not exist yet yields an empty list.
func (r *Repository) ListMeterConfigs() ([]StoredMeterConfig, error) {
	if !r.db.Migrator().HasTable(&StoredMeterConfig{}) {
		return nil, nil
	}
	var cfgs []StoredMeterConfig
	if err := r.db.Order("meter_id").Find(&cfgs).Error; err != nil {
		return nil, fmt.Errorf("list meter configs: %w", err)
	}
	return cfgs, nil
}
