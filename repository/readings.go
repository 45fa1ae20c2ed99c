package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/cepro/metermonitor/telemetry"
)

// SaveReading persists one poll of a meter. Absent and non-finite values are
// dropped before the insert, so a row never contains NaN, infinity or a
// column outside the readings schema. When no value survives the filtering
// the insert is skipped and a nil row is returned without error.
func (r *Repository) SaveReading(meterID string, ts time.Time, values telemetry.Values) (*StoredReading, error) {
	reading, set := telemetry.NewReading(meterID, ts, values)
	if set == 0 {
		return nil, nil
	}

	stored := StoredReading{Reading: reading}
	if err := r.db.Create(&stored).Error; err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}
	return &stored, nil
}

// ReadingsSince returns one meter's readings with timestamps in the trailing
// window, newest first.
func (r *Repository) ReadingsSince(meterID string, window time.Duration) ([]StoredReading, error) {
	now := time.Now()
	var rows []StoredReading
	err := r.db.
		Where("meter_id = ? AND timestamp BETWEEN ? AND ?", meterID, now.Add(-window), now).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	return rows, nil
}

// LatestPerMeter returns, for every configured meter present in the readings
// table, its single most recent reading joined with the configured name and
// location. Equal timestamps are broken by the higher row id; which reading
// wins a tie is not part of the contract. Readings orphaned by a removed
// meter configuration are not reported.
func (r *Repository) LatestPerMeter() ([]LatestReading, error) {
	var rows []LatestReading
	err := r.db.Raw(`
		SELECT r.*, m.name AS name, m.location AS location
		FROM pac3200_readings r
		JOIN meters_config m ON m.meter_id = r.meter_id
		WHERE r.id = (
			SELECT r2.id FROM pac3200_readings r2
			WHERE r2.meter_id = r.meter_id
			ORDER BY r2.timestamp DESC, r2.id DESC
			LIMIT 1
		)
		ORDER BY m.name`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query latest readings: %w", err)
	}
	return rows, nil
}

// aggSample is the column subset fetched for aggregation.
type aggSample struct {
	MeterID          string    `gorm:"column:meter_id"`
	Timestamp        time.Time `gorm:"column:timestamp"`
	TotalActivePower *float64  `gorm:"column:Total_Active_Power"`
	Frequency        *float64  `gorm:"column:Frequency"`
	PowerFactor      *float64  `gorm:"column:Total_Power_Factor"`
}

// AggregateReadings groups the trailing window of readings across all meters,
// newest bucket first. Timestamps are truncated to bucket before grouping; a
// zero bucket groups by the exact timestamp, which only merges rows from
// meters that happened to be polled at the same instant - independently
// polled meters rarely are, so callers wanting system-level series should
// pass a bucket at least as long as the polling interval.
func (r *Repository) AggregateReadings(window, bucket time.Duration) ([]AggregateRow, error) {
	now := time.Now()
	var samples []aggSample
	err := r.db.
		Table(readingsTable).
		Select("meter_id, timestamp, Total_Active_Power, Frequency, Total_Power_Factor").
		Where("timestamp BETWEEN ? AND ?", now.Add(-window), now).
		Scan(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("query aggregation window: %w", err)
	}

	type group struct {
		power   float64
		freqSum float64
		freqN   int
		pfSum   float64
		pfN     int
		meters  map[string]struct{}
	}

	groups := make(map[time.Time]*group)
	for _, s := range samples {
		key := s.Timestamp
		if bucket > 0 {
			key = key.Truncate(bucket)
		}
		g := groups[key]
		if g == nil {
			g = &group{meters: make(map[string]struct{})}
			groups[key] = g
		}
		if s.TotalActivePower != nil {
			g.power += *s.TotalActivePower
		}
		if s.Frequency != nil {
			g.freqSum += *s.Frequency
			g.freqN++
		}
		if s.PowerFactor != nil {
			g.pfSum += *s.PowerFactor
			g.pfN++
		}
		g.meters[s.MeterID] = struct{}{}
	}

	rows := make([]AggregateRow, 0, len(groups))
	for ts, g := range groups {
		row := AggregateRow{
			Timestamp:        ts,
			TotalActivePower: g.power,
			MeterCount:       len(g.meters),
		}
		if g.freqN > 0 {
			row.Frequency = g.freqSum / float64(g.freqN)
		}
		if g.pfN > 0 {
			row.PowerFactor = g.pfSum / float64(g.pfN)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp.After(rows[j].Timestamp)
	})
	return rows, nil
}
