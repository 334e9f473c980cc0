package generator

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/engine"
	"github.com/shenikar/violation_pipeline/internal/ingest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(count int) Options {
	opts := DefaultOptions()
	opts.Count = count
	opts.Seed = 42
	opts.Now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return opts
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(testOptions(200))
	b := Generate(testOptions(200))

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same options produced different data (-a +b):\n%s", diff)
	}
}

func TestGenerate_ValuePools(t *testing.T) {
	records := Generate(testOptions(2000))
	require.Len(t, records, 2000)

	assert.Equal(t, "V00000", *records[0].ViolationID)
	assert.Equal(t, "V01999", *records[1999].ViolationID)

	var malformed, nullVehicles int
	for _, r := range records {
		assert.Contains(t, ViolationTypes, *r.ViolationType)
		assert.Contains(t, Locations, *r.Location)
		assert.GreaterOrEqual(t, *r.Severity, 1)
		assert.LessOrEqual(t, *r.Severity, 5)
		if *r.RawTimestamp == MalformedTimestamp {
			malformed++
		}
		if r.VehicleType == nil {
			nullVehicles++
		}
	}
	assert.Positive(t, malformed)
	assert.Less(t, malformed, 300, "about 5% of timestamps are malformed")
	assert.Positive(t, nullVehicles)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	sess, err := engine.Open(config.Default(), logger)
	require.NoError(t, err)
	defer sess.Close()

	records := Generate(testOptions(50))

	for _, name := range []string{"data.csv", "data.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, records))

			loaded, err := ingest.Load(sess, path)
			require.NoError(t, err)
			if diff := cmp.Diff(records, loaded); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteFile_UnsupportedExtension(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "data.xml"), nil)
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)
}
