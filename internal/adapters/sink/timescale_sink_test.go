package sink

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

func TestTimescaleSinkWriteAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewTimescaleSink(db, "measurements")
	energy := uint64(987654321)

	samples := []domain.Sample{
		{
			Timestamp:            "2024-05-01 12:00:00.000",
			TimestampUnix:        1714564800,
			OOBPower:             &domain.PowerReading{Watts: 220, Source: domain.SourceOutOfBand},
			OnChipPower:          &domain.PowerReading{Watts: 41.5, Source: domain.SourceOnChipEnergy},
			RawEnergyMicrojoules: &energy,
		},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO measurements (ts, ts_unix, ipmi_watts, rapl_pkg_watts, rapl_energy_uj) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (ts_unix) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs("2024-05-01 12:00:00.000", float64(1714564800), 220.0, 41.5, int64(987654321)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.WriteAll(samples); err != nil {
		t.Fatalf("write all: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkDegradedFieldsBecomeNull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewTimescaleSink(db, "measurements")

	samples := []domain.Sample{
		{Timestamp: "2024-05-01 12:00:01.000", TimestampUnix: 1714564801},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO measurements (ts, ts_unix, ipmi_watts, rapl_pkg_watts, rapl_energy_uj) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (ts_unix) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs("2024-05-01 12:00:01.000", float64(1714564801), nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.WriteAll(samples); err != nil {
		t.Fatalf("write all: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkNoSamples(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewTimescaleSink(db, "measurements")
	if err := s.WriteAll(nil); err != nil {
		t.Fatalf("expected nil error for empty series, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
