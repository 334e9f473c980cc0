package report

import (
	"fmt"
	"math"

	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/schema"
	"gonum.org/v1/gonum/stat"
)

// DistributionFields - категориальные поля, распределение которых входит в отчет
var DistributionFields = []string{schema.ViolationType, schema.VehicleType, schema.Location}

// Summarize строит сводку по очищенному и обогащенному набору. Только читает записи.
func Summarize(records []*models.ViolationRecord) *models.Report {
	rep := &models.Report{
		TotalCount:    len(records),
		NullCounts:    make(map[string]int, len(schema.Columns)),
		Distributions: make(map[string]map[string]int, len(DistributionFields)),
	}
	for _, c := range schema.Columns {
		rep.NullCounts[c.Name] = 0
	}
	for _, f := range DistributionFields {
		rep.Distributions[f] = make(map[string]int)
	}

	severities := make([]float64, 0, len(records))
	for _, r := range records {
		for _, c := range schema.Columns {
			if isNull(r, c.Name) {
				rep.NullCounts[c.Name]++
			}
		}
		for _, f := range DistributionFields {
			if v := stringField(r, f); v != nil {
				rep.Distributions[f][*v]++
			}
		}
		if r.Latitude != nil {
			rep.GeoPopulatedCount++
		}
		if r.Severity != nil {
			severities = append(severities, float64(*r.Severity))
		}
	}

	rep.Severity = severityStats(severities)
	return rep
}

// Distribution считает частоты значений строкового поля; null не учитывается
func Distribution(records []*models.ViolationRecord, field string) (map[string]int, error) {
	col, ok := schema.Lookup(field)
	if !ok {
		return nil, fmt.Errorf("report: unknown field %q", field)
	}
	if col.Type != schema.TypeString {
		return nil, fmt.Errorf("report: field %q is not categorical", field)
	}

	dist := make(map[string]int)
	for _, r := range records {
		if v := stringField(r, field); v != nil {
			dist[*v]++
		}
	}
	return dist, nil
}

func severityStats(values []float64) models.SeverityStats {
	if len(values) == 0 {
		return models.SeverityStats{}
	}

	s := models.SeverityStats{Count: len(values), Min: math.MaxInt, Max: math.MinInt}
	for _, v := range values {
		s.Min = min(s.Min, int(v))
		s.Max = max(s.Max, int(v))
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}

func stringField(r *models.ViolationRecord, field string) *string {
	switch field {
	case schema.ViolationID:
		return r.ViolationID
	case schema.Location:
		return r.Location
	case schema.ViolationType:
		return r.ViolationType
	case schema.VehicleType:
		return r.VehicleType
	}
	return nil
}

func isNull(r *models.ViolationRecord, field string) bool {
	switch field {
	case schema.ViolationID:
		return r.ViolationID == nil
	case schema.Timestamp:
		return r.Timestamp == nil
	case schema.Location:
		return r.Location == nil
	case schema.ViolationType:
		return r.ViolationType == nil
	case schema.VehicleType:
		return r.VehicleType == nil
	case schema.Severity:
		return r.Severity == nil
	case schema.Latitude:
		return r.Latitude == nil
	case schema.Longitude:
		return r.Longitude == nil
	}
	return false
}
