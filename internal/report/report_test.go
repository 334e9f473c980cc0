package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []*models.ViolationRecord {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return []*models.ViolationRecord{
		{
			ViolationID: models.Ptr("V1"), Timestamp: &ts, Location: models.Ptr("40.7,-74.0"),
			ViolationType: models.Ptr("Speeding"), VehicleType: models.Ptr("Car"), Severity: models.Ptr(1),
			Latitude: models.Ptr(40.7), Longitude: models.Ptr(-74.0),
		},
		{
			ViolationID: models.Ptr("V2"), Location: models.Ptr("INT001"),
			ViolationType: models.Ptr("Speeding"), VehicleType: models.Ptr("Unknown"), Severity: models.Ptr(5),
		},
		{
			ViolationID: models.Ptr("V3"), Timestamp: &ts, Location: models.Ptr("INT001"),
			ViolationType: models.Ptr("Red Light"), VehicleType: models.Ptr("Car"),
		},
	}
}

func TestSummarize(t *testing.T) {
	rep := Summarize(sampleRecords())

	assert.Equal(t, 3, rep.TotalCount)
	assert.Equal(t, map[string]int{
		schema.ViolationID:   0,
		schema.Timestamp:     1,
		schema.Location:      0,
		schema.ViolationType: 0,
		schema.VehicleType:   0,
		schema.Severity:      1,
		schema.Latitude:      2,
		schema.Longitude:     2,
	}, rep.NullCounts)
	assert.Equal(t, map[string]int{"Speeding": 2, "Red Light": 1}, rep.Distribution(schema.ViolationType))
	assert.Equal(t, map[string]int{"Car": 2, "Unknown": 1}, rep.Distribution(schema.VehicleType))
	assert.Equal(t, map[string]int{"40.7,-74.0": 1, "INT001": 2}, rep.Distribution(schema.Location))
	assert.Equal(t, 1, rep.GeoPopulatedCount)

	assert.Equal(t, 2, rep.Severity.Count)
	assert.InDelta(t, 3.0, rep.Severity.Mean, 1e-9)
	assert.InDelta(t, 2.828427, rep.Severity.StdDev, 1e-6)
	assert.Equal(t, 1, rep.Severity.Min)
	assert.Equal(t, 5, rep.Severity.Max)
}

func TestSummarize_DistributionSumsToTotal(t *testing.T) {
	records := sampleRecords()
	rep := Summarize(records)

	sum := 0
	for _, n := range rep.Distribution(schema.ViolationType) {
		sum += n
	}
	assert.Equal(t, rep.TotalCount, sum)
}

func TestSummarize_Empty(t *testing.T) {
	rep := Summarize(nil)

	assert.Zero(t, rep.TotalCount)
	assert.Zero(t, rep.GeoPopulatedCount)
	assert.Len(t, rep.NullCounts, len(schema.Columns))
	for _, n := range rep.NullCounts {
		assert.Zero(t, n)
	}
	assert.Empty(t, rep.Distribution(schema.ViolationType))
	assert.Empty(t, rep.Distribution(schema.VehicleType))
	assert.Equal(t, models.SeverityStats{}, rep.Severity)
}

func TestSummarize_SingleSeverity(t *testing.T) {
	rep := Summarize([]*models.ViolationRecord{{Severity: models.Ptr(4)}})

	assert.Equal(t, models.SeverityStats{Count: 1, Mean: 4, Min: 4, Max: 4}, rep.Severity)
}

func TestDistribution(t *testing.T) {
	dist, err := Distribution(sampleRecords(), schema.VehicleType)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Car": 2, "Unknown": 1}, dist)

	_, err = Distribution(sampleRecords(), schema.Severity)
	assert.ErrorContains(t, err, "not categorical")

	_, err = Distribution(sampleRecords(), "plate_number")
	assert.ErrorContains(t, err, "unknown field")
}

func TestRender(t *testing.T) {
	records := sampleRecords()
	run := &models.Run{
		ID:          uuid.New(),
		InputPath:   "in.csv",
		OutputPath:  "out.parquet",
		Status:      models.RunStatusSucceeded,
		CleanStats:  models.CleanStats{Input: 5, DroppedMissingID: 1, DroppedDisallowedType: 1, Output: 3},
		EnrichStats: models.EnrichStats{Coordinates: 1, IntersectionCodes: 2},
		Report:      Summarize(records),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, run))

	out := buf.String()
	assert.Contains(t, out, "TRAFFIC VIOLATION SUMMARY REPORT")
	assert.Contains(t, out, "Total rows after cleaning:")
	assert.Contains(t, out, "violation_type distribution:")
	assert.Contains(t, out, "Speeding")
	assert.Contains(t, out, "Rows with latitude populated:")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Speeding")), bytes.Index(buf.Bytes(), []byte("Red Light")),
		"most frequent value first")
}

func TestRender_FailedRun(t *testing.T) {
	run := &models.Run{ID: uuid.New(), Status: models.RunStatusFailed, Error: "ingest x.txt: unsupported file format"}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, run))
	assert.Contains(t, buf.String(), "unsupported file format")
	assert.NotContains(t, buf.String(), "Total rows")
}

func TestRenderHTML(t *testing.T) {
	run := &models.Run{ID: uuid.New(), Status: models.RunStatusSucceeded, Report: Summarize(sampleRecords())}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, run))

	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "violation_type distribution")
	assert.Contains(t, out, "null values per column")
	assert.Contains(t, out, "Red Light")
}

func TestRenderHTML_NoReport(t *testing.T) {
	run := &models.Run{ID: uuid.New(), Status: models.RunStatusFailed}

	assert.Error(t, RenderHTML(&bytes.Buffer{}, run))
}
