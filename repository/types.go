package repository

import (
	"time"

	"github.com/cepro/metermonitor/telemetry"
)

// StoredMeterConfig is a persisted meter configuration row: the single source
// of truth for rebuilding runtime meter connections at startup.
type StoredMeterConfig struct {
	MeterID     string `gorm:"column:meter_id;primaryKey"`
	Name        string `gorm:"not null"`
	Host        string `gorm:"not null"`
	Port        int    `gorm:"not null"`
	UnitID      int    `gorm:"column:unit_id;not null"`
	TimeoutSecs int    `gorm:"column:timeout_secs"`
	Location    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (StoredMeterConfig) TableName() string {
	return "meters_config"
}

// StoredReading is a persisted reading row: one poll of one meter.
type StoredReading struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
	telemetry.Reading
}

func (StoredReading) TableName() string {
	return "pac3200_readings"
}

// LatestReading is a meter's most recent reading joined with its configured
// name and location.
type LatestReading struct {
	StoredReading
	Name     string `gorm:"column:name"`
	Location string `gorm:"column:location"`
}

// AggregateRow is one system-level aggregation bucket across all meters.
type AggregateRow struct {
	// Timestamp is the bucket start, or the exact shared timestamp when
	// aggregating with a zero bucket.
	Timestamp time.Time
	// TotalActivePower is the sum of Total_Active_Power across the bucket.
	TotalActivePower float64
	// Frequency is the mean Frequency across readings that reported one.
	Frequency float64
	// PowerFactor is the mean Total_Power_Factor across readings that
	// reported one.
	PowerFactor float64
	// MeterCount is the number of distinct meters contributing to the bucket.
	MeterCount int
}
