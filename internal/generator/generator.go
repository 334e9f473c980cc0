package generator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/shenikar/violation_pipeline/internal/config"
	"github.com/shenikar/violation_pipeline/internal/ingest"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
)

// MalformedTimestamp - значение, которым генератор портит часть временных меток
const MalformedTimestamp = "malformed"

var (
	ViolationTypes = []string{"Speeding", "Red Light", "Illegal Turn", "Illegal Parking", "Unknown"}
	// VehicleTypes: пустая строка означает null
	VehicleTypes = []string{"Car", "Truck", "Motorcycle", "Bus", ""}
	Locations    = []string{
		"INT001", "INT002", "INT003", "INT004", "INT005",
		"40.7128,-74.0060", "34.0522,-118.2437", "51.5074,-0.1278", "48.8566,2.3522",
	}
)

// Options - параметры генерации
type Options struct {
	Count         int
	Seed          uint64
	Now           time.Time
	MalformedRate float64
	Layout        string
}

// DefaultOptions возвращает параметры, соответствующие исходному набору: 10000 строк, ~5% битых меток времени
func DefaultOptions() Options {
	return Options{
		Count:         10000,
		Seed:          1,
		Now:           time.Now().UTC(),
		MalformedRate: 0.05,
		Layout:        config.DefaultTimestampLayout,
	}
}

// Generate создает синтетические записи. При одинаковых Options результат детерминирован.
func Generate(opts Options) []*models.ViolationRecord {
	if opts.Layout == "" {
		opts.Layout = config.DefaultTimestampLayout
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	records := make([]*models.ViolationRecord, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		ts := opts.Now.
			Add(-time.Duration(rng.IntN(91)) * 24 * time.Hour).
			Add(-time.Duration(rng.IntN(24)) * time.Hour).
			Add(-time.Duration(rng.IntN(60)) * time.Minute).
			Format(opts.Layout)
		if rng.Float64() < opts.MalformedRate {
			ts = MalformedTimestamp
		}

		rec := &models.ViolationRecord{
			ViolationID:   models.Ptr(fmt.Sprintf("V%05d", i)),
			RawTimestamp:  models.Ptr(ts),
			Location:      models.Ptr(Locations[rng.IntN(len(Locations))]),
			ViolationType: models.Ptr(ViolationTypes[rng.IntN(len(ViolationTypes))]),
			Severity:      models.Ptr(rng.IntN(5) + 1),
		}
		if v := VehicleTypes[rng.IntN(len(VehicleTypes))]; v != "" {
			rec.VehicleType = models.Ptr(v)
		}
		records = append(records, rec)
	}
	return records
}

// WriteFile записывает записи в CSV или JSON Lines в зависимости от расширения
func WriteFile(path string, records []*models.ViolationRecord) (err error) {
	format, err := ingest.DetectFormat(path)
	if err != nil {
		return fmt.Errorf("generator: %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("generator: could not create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("generator: could not close %s: %w", path, cerr)
		}
	}()

	switch format {
	case ingest.FormatCSV:
		return WriteCSV(f, records)
	default:
		return WriteJSONLines(f, records)
	}
}

// WriteCSV пишет записи с заголовком; null записывается пустой ячейкой
func WriteCSV(w io.Writer, records []*models.ViolationRecord) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(schema.InputColumns()))
	for _, c := range schema.InputColumns() {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("generator: write header: %w", err)
	}

	for _, r := range records {
		severity := ""
		if r.Severity != nil {
			severity = strconv.Itoa(*r.Severity)
		}
		row := []string{
			deref(r.ViolationID),
			deref(r.RawTimestamp),
			deref(r.Location),
			deref(r.ViolationType),
			deref(r.VehicleType),
			severity,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("generator: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonRow struct {
	ViolationID   *string `json:"violation_id"`
	Timestamp     *string `json:"timestamp"`
	Location      *string `json:"location"`
	ViolationType *string `json:"violation_type"`
	VehicleType   *string `json:"vehicle_type"`
	Severity      *int    `json:"severity"`
}

// WriteJSONLines пишет по одному JSON-объекту на строку
func WriteJSONLines(w io.Writer, records []*models.ViolationRecord) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		row := jsonRow{
			ViolationID:   r.ViolationID,
			Timestamp:     r.RawTimestamp,
			Location:      r.Location,
			ViolationType: r.ViolationType,
			VehicleType:   r.VehicleType,
			Severity:      r.Severity,
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("generator: encode row: %w", err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
