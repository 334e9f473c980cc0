package models

// CleanStats - счетчики стадии очистки. Исключения записей считаются, но не являются ошибками.
type CleanStats struct {
	Input                 int `json:"input"`
	VehicleTypeDefaulted  int `json:"vehicle_type_defaulted"`
	DroppedMissingID      int `json:"dropped_missing_id"`
	TimestampsNulled      int `json:"timestamps_nulled"`
	DroppedDisallowedType int `json:"dropped_disallowed_type"`
	Output                int `json:"output"`
}

// EnrichStats - счетчики стадии обогащения координатами
type EnrichStats struct {
	Coordinates          int `json:"coordinates"`
	IntersectionCodes    int `json:"intersection_codes"`
	MalformedCoordinates int `json:"malformed_coordinates"`
}

// SeverityStats - описательная статистика по полю severity (null-значения не учитываются)
type SeverityStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Report - сводный отчет по очищенному и обогащенному набору
type Report struct {
	TotalCount        int                       `json:"total_count"`
	NullCounts        map[string]int            `json:"null_count_per_field"`
	Distributions     map[string]map[string]int `json:"distributions"`
	GeoPopulatedCount int                       `json:"geo_populated_count"`
	Severity          SeverityStats             `json:"severity"`
}

// Distribution возвращает распределение значений поля или пустую карту, если оно не считалось
func (r *Report) Distribution(field string) map[string]int {
	if d, ok := r.Distributions[field]; ok {
		return d
	}
	return map[string]int{}
}
