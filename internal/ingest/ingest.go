package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenikar/violation_pipeline/internal/engine"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/sirupsen/logrus"
)

// Format - формат входного файла
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DetectFormat определяет формат по расширению файла
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Load читает записи о нарушениях из файла в объявленную схему.
// Любая возвращенная ошибка имеет тип *InputError.
func Load(sess *engine.Session, path string) ([]*models.ViolationRecord, error) {
	if err := sess.Check(); err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	log := sess.Log().WithFields(logrus.Fields{
		"stage":  "ingest",
		"path":   path,
		"format": format,
	})
	log.Info("Loading violation records")

	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: fmt.Errorf("could not open input file: %w", err)}
	}
	defer f.Close()

	var records []*models.ViolationRecord
	switch format {
	case FormatCSV:
		records, err = readCSV(f, path, log)
	case FormatJSON:
		records, err = readJSON(f, path, log)
	}
	if err != nil {
		log.WithError(err).Error("Failed to load input file")
		return nil, err
	}

	log.WithField("count", len(records)).Info("Violation records loaded")
	return records, nil
}
