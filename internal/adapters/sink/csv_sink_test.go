package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aharivel/power-measurement-toolkit/internal/domain"
)

func samplePair() []domain.Sample {
	energy := uint64(123456789)
	return []domain.Sample{
		{
			Timestamp:            "2024-05-01 12:00:00.000",
			TimestampUnix:        1714564800,
			OOBPower:             &domain.PowerReading{Watts: 220, Source: domain.SourceOutOfBand},
			OnChipPower:          &domain.PowerReading{Watts: 41.5, Source: domain.SourceOnChipEnergy},
			RawEnergyMicrojoules: &energy,
		},
		{
			// IPMI failed this tick; only its column may be empty.
			Timestamp:            "2024-05-01 12:00:01.000",
			TimestampUnix:        1714564801,
			OnChipPower:          &domain.PowerReading{Watts: 42.25, Source: domain.SourceOnChipEnergy},
			RawEnergyMicrojoules: &energy,
		},
	}
}

func TestCSVSinkWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, NewCSVSink(path).WriteAll(samplePair()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, Header, records[0])
	require.Equal(t, []string{"2024-05-01 12:00:00.000", "1714564800", "220", "41.5", "123456789"}, records[1])

	// Degraded tick: ipmi_watts empty, the other source still populated.
	require.Equal(t, "", records[2][2])
	require.Equal(t, "42.25", records[2][3])
	require.Equal(t, "123456789", records[2][4])
}

func TestCSVSinkEmptySeriesStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	require.NoError(t, NewCSVSink(path).WriteAll(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "timestamp,timestamp_unix,ipmi_watts,rapl_pkg_watts,rapl_energy_uj\n", string(data))
}
