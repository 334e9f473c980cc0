package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
	"github.com/sirupsen/logrus"
)

const maxJSONLineSize = 1 << 20

var jsonNull = []byte("null")

// readJSON читает JSON Lines или JSON-массив объектов.
// Поля приводятся к объявленной схеме; неразбираемый severity становится null.
func readJSON(r io.Reader, path string, log *logrus.Entry) ([]*models.ViolationRecord, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return make([]*models.ViolationRecord, 0), nil
		}
		return nil, &InputError{Path: path, Err: fmt.Errorf("could not read JSON: %w", err)}
	}

	c := &jsonCoercer{}
	var records []*models.ViolationRecord
	if first == '[' {
		records, err = readJSONArray(br, path, c)
	} else {
		records, err = readJSONLines(br, path, c)
	}
	if err != nil {
		return nil, err
	}

	if c.nulledSeverity > 0 {
		log.WithField("count", c.nulledSeverity).Debug("Unparseable severity values loaded as null")
	}
	return records, nil
}

func readJSONLines(r io.Reader, path string, c *jsonCoercer) ([]*models.ViolationRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLineSize)

	records := make([]*models.ViolationRecord, 0)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec, err := c.decode(raw)
		if err != nil {
			return nil, &InputError{Path: path, Line: line, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &InputError{Path: path, Line: line + 1, Err: fmt.Errorf("could not read JSON line: %w", err)}
	}
	return records, nil
}

func readJSONArray(r io.Reader, path string, c *jsonCoercer) ([]*models.ViolationRecord, error) {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return nil, &InputError{Path: path, Err: fmt.Errorf("could not read JSON array: %w", err)}
	}

	records := make([]*models.ViolationRecord, 0)
	for i := 1; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &InputError{Path: path, Err: fmt.Errorf("element %d: %w", i, err)}
		}
		rec, err := c.decode(raw)
		if err != nil {
			return nil, &InputError{Path: path, Err: fmt.Errorf("element %d: %w", i, err)}
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, &InputError{Path: path, Err: fmt.Errorf("unterminated JSON array: %w", err)}
	}
	// После закрывающей скобки допускаются только пробелы
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("unexpected %v", tok)
		}
		return nil, &InputError{Path: path, Err: fmt.Errorf("trailing data after JSON array: %w", err)}
	}
	return records, nil
}

type jsonCoercer struct {
	nulledSeverity int
}

func (c *jsonCoercer) decode(raw []byte) (*models.ViolationRecord, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if obj == nil {
		return nil, errors.New("not a JSON object: null")
	}

	rec := &models.ViolationRecord{
		ViolationID:   coerceString(obj[schema.ViolationID]),
		RawTimestamp:  coerceString(obj[schema.Timestamp]),
		Location:      coerceString(obj[schema.Location]),
		ViolationType: coerceString(obj[schema.ViolationType]),
		VehicleType:   coerceString(obj[schema.VehicleType]),
	}

	if v, ok := obj[schema.Severity]; ok && !isNull(v) {
		rec.Severity = coerceInt(v)
		if rec.Severity == nil {
			c.nulledSeverity++
		}
	}
	return rec, nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), jsonNull)
}

// coerceString приводит любое JSON-значение к строке: строки раскавычиваются, остальное берется как текст
func coerceString(v json.RawMessage) *string {
	if isNull(v) {
		return nil
	}
	v = bytes.TrimSpace(v)
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return &s
		}
	}
	s := string(v)
	return &s
}

func coerceInt(v json.RawMessage) *int {
	v = bytes.TrimSpace(v)
	text := string(v)
	if v[0] == '"' {
		if err := json.Unmarshal(v, &text); err != nil {
			return nil
		}
		text = strings.TrimSpace(text)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &n
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
