package sink

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// MeasurementRow is the sqlite schema for one persisted tick.
type MeasurementRow struct {
	ID            uint    `gorm:"primaryKey"`
	Timestamp     string  `gorm:"index;not null"`
	TimestampUnix float64 `gorm:"index;not null"`
	IPMIWatts     *float64
	RAPLPkgWatts  *float64
	RAPLEnergyUJ  *int64
}

func (MeasurementRow) TableName() string { return "measurements" }

// SQLiteSink keeps a local archive of runs, for hosts where no central
// database is reachable.
type SQLiteSink struct {
	db *gorm.DB
}

func NewSQLiteSink(filename string) (*SQLiteSink, error) {
	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", filename, err)
	}
	if err := db.AutoMigrate(&MeasurementRow{}); err != nil {
		return nil, fmt.Errorf("migrate measurements: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) WriteAll(samples []domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([]MeasurementRow, 0, len(samples))
	for _, sample := range samples {
		rows = append(rows, rowFromSample(sample))
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Create(&rows); res.Error != nil {
			return fmt.Errorf("create rows: %w", res.Error)
		}
		return nil
	})
}

// DB exposes the underlying handle for tests and ad-hoc queries.
func (s *SQLiteSink) DB() *gorm.DB { return s.db }

func rowFromSample(s domain.Sample) MeasurementRow {
	row := MeasurementRow{
		Timestamp:     s.Timestamp,
		TimestampUnix: s.TimestampUnix,
	}
	if s.OOBPower != nil {
		w := s.OOBPower.Watts
		row.IPMIWatts = &w
	}
	if s.OnChipPower != nil {
		w := s.OnChipPower.Watts
		row.RAPLPkgWatts = &w
	}
	if s.RawEnergyMicrojoules != nil {
		e := int64(*s.RawEnergyMicrojoules)
		row.RAPLEnergyUJ = &e
	}
	return row
}

var _ ports.Sink = (*SQLiteSink)(nil)
