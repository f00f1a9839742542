package sink

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteSinkRoundTrip(t *testing.T) {
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)

	require.NoError(t, s.WriteAll(samplePair()))

	var rows []MeasurementRow
	tx := s.DB().Order("timestamp_unix asc").Find(&rows)
	require.NoError(t, tx.Error)
	require.Len(t, rows, 2)

	require.NotNil(t, rows[0].IPMIWatts)
	require.Equal(t, 220.0, *rows[0].IPMIWatts)
	require.NotNil(t, rows[0].RAPLEnergyUJ)
	require.Equal(t, int64(123456789), *rows[0].RAPLEnergyUJ)

	// Degraded tick keeps a NULL ipmi column while the rapl side survives.
	require.Nil(t, rows[1].IPMIWatts)
	require.NotNil(t, rows[1].RAPLPkgWatts)
	require.Equal(t, 42.25, *rows[1].RAPLPkgWatts)
}

func TestSQLiteSinkEmptySeries(t *testing.T) {
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	require.NoError(t, s.WriteAll(nil))
}
