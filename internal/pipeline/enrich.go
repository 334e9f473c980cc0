package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/shenikar/violation_pipeline/internal/models"
)

const coordinateSeparator = ","

// Enrich выделяет latitude/longitude из location вида "lat,lon".
// Для кода перекрестка оба поля остаются null. Если после разделения не ровно две части
// или хотя бы одна не является конечным числом, оба поля тоже null.
// Координаты каждый раз вычисляются заново из location.
func Enrich(records []*models.ViolationRecord) ([]*models.ViolationRecord, models.EnrichStats) {
	var stats models.EnrichStats
	enriched := make([]*models.ViolationRecord, len(records))

	for i, r := range records {
		rec := r.Clone()
		rec.Latitude, rec.Longitude = nil, nil

		switch {
		case rec.Location == nil:
			// null location не считается ни кодом перекрестка, ни координатами
		case !strings.Contains(*rec.Location, coordinateSeparator):
			stats.IntersectionCodes++
		default:
			lat, lon, ok := ParseCoordinates(*rec.Location)
			if ok {
				rec.Latitude, rec.Longitude = &lat, &lon
				stats.Coordinates++
			} else {
				stats.MalformedCoordinates++
			}
		}
		enriched[i] = rec
	}
	return enriched, stats
}

// ParseCoordinates разбирает строку "lat,lon"
func ParseCoordinates(location string) (lat, lon float64, ok bool) {
	parts := strings.Split(location, coordinateSeparator)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, ok = parseFinite(parts[0])
	if !ok {
		return 0, 0, false
	}
	lon, ok = parseFinite(parts[1])
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
