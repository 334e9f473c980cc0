package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
	"github.com/sirupsen/logrus"
)

// readCSV читает CSV с заголовком по объявленной схеме.
// Пустая ячейка - null; нецелое значение severity - фатальная ошибка.
func readCSV(r io.Reader, path string, log *logrus.Entry) ([]*models.ViolationRecord, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &InputError{Path: path, Err: errors.New("empty file: header row is missing")}
		}
		return nil, csvError(path, err)
	}

	index, extra, err := schema.ValidateHeader(header)
	if err != nil {
		return nil, &InputError{Path: path, Line: 1, Err: err}
	}
	if len(extra) > 0 {
		log.WithField("columns", extra).Debug("Ignoring columns not in the record schema")
	}

	records := make([]*models.ViolationRecord, 0)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(path, err)
		}
		line, _ = reader.FieldPos(0)

		cell := func(name string) *string {
			v := row[index[name]]
			if v == "" {
				return nil
			}
			return &v
		}

		rec := &models.ViolationRecord{
			ViolationID:   cell(schema.ViolationID),
			RawTimestamp:  cell(schema.Timestamp),
			Location:      cell(schema.Location),
			ViolationType: cell(schema.ViolationType),
			VehicleType:   cell(schema.VehicleType),
		}

		if raw := cell(schema.Severity); raw != nil {
			severity, err := strconv.Atoi(strings.TrimSpace(*raw))
			if err != nil {
				return nil, &InputError{
					Path:   path,
					Line:   line,
					Column: schema.Severity,
					Err:    fmt.Errorf("value %q is not an integer", *raw),
				}
			}
			rec.Severity = &severity
		}

		records = append(records, rec)
	}
	return records, nil
}

func csvError(path string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &InputError{Path: path, Line: parseErr.Line, Err: parseErr.Err}
	}
	return &InputError{Path: path, Err: fmt.Errorf("could not read CSV: %w", err)}
}
