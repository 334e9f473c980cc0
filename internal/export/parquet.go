package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shenikar/violation_pipeline/internal/engine"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/sirupsen/logrus"
)

// Row - строка Parquet-файла. Указатели дают optional-колонки: null пишется как отсутствующее значение.
// timestamp пишется как TIMESTAMP(MICROS): так колонку читает Spark 3.
type Row struct {
	ViolationID   *string    `parquet:"violation_id"`
	Timestamp     *time.Time `parquet:"timestamp,timestamp(microsecond)"`
	Location      *string    `parquet:"location"`
	ViolationType *string    `parquet:"violation_type"`
	VehicleType   *string    `parquet:"vehicle_type"`
	Severity      *int64     `parquet:"severity"`
	Latitude      *float64   `parquet:"latitude"`
	Longitude     *float64   `parquet:"longitude"`
}

// ToRow преобразует запись в строку Parquet
func ToRow(r *models.ViolationRecord) Row {
	row := Row{
		ViolationID:   r.ViolationID,
		Timestamp:     r.Timestamp,
		Location:      r.Location,
		ViolationType: r.ViolationType,
		VehicleType:   r.VehicleType,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
	}
	if r.Severity != nil {
		row.Severity = models.Ptr(int64(*r.Severity))
	}
	return row
}

// WriteParquet записывает итоговый набор в Parquet-файл, перезаписывая существующий путь.
// Файл сначала пишется во временный файл рядом с назначением и затем переименовывается.
func WriteParquet(sess *engine.Session, records []*models.ViolationRecord, dest string) (err error) {
	if err := sess.Check(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	log := sess.Log().WithFields(logrus.Fields{
		"stage": "export",
		"path":  dest,
		"count": len(records),
	})
	log.Info("Writing parquet export")

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: could not create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("export: could not create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = ToRow(r)
	}

	writer := parquet.NewGenericWriter[Row](tmp)
	if _, err = writer.Write(rows); err != nil {
		return fmt.Errorf("export: write rows: %w", err)
	}
	if err = writer.Close(); err != nil {
		return fmt.Errorf("export: finalize parquet: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("export: sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("export: close: %w", err)
	}

	// Режим overwrite: каталог на месте назначения удаляется
	if info, statErr := os.Stat(dest); statErr == nil && info.IsDir() {
		if err = os.RemoveAll(dest); err != nil {
			return fmt.Errorf("export: could not remove existing directory %s: %w", dest, err)
		}
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("export: could not move export into place: %w", err)
	}

	log.Info("Parquet export written")
	return nil
}
