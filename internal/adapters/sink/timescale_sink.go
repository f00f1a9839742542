package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
	"github.com/aharivel/power-measurement-toolkit/internal/ports"
)

// TimescaleSink archives finished runs into a Postgres/Timescale table so
// series from many runs can be analysed together.
type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteAll(samples []domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (ts, ts_unix, ipmi_watts, rapl_pkg_watts, rapl_energy_uj) VALUES ")

	args := make([]any, 0, len(samples)*5)
	for i, s := range samples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5))

		args = append(args,
			s.Timestamp,
			s.TimestampUnix,
			nullableWatts(s.OOBPower),
			nullableWatts(s.OnChipPower),
			nullableEnergy(s.RawEnergyMicrojoules),
		)
	}

	b.WriteString(" ON CONFLICT (ts_unix) DO NOTHING")

	_, err := t.db.Exec(b.String(), args...)
	return err
}

func nullableWatts(r *domain.PowerReading) any {
	if r == nil {
		return nil
	}
	return r.Watts
}

func nullableEnergy(e *uint64) any {
	if e == nil {
		return nil
	}
	return int64(*e)
}

var _ ports.Sink = (*TimescaleSink)(nil)
