package schema

import (
	"fmt"
	"strings"
)

// Type - тип колонки в объявленной схеме
type Type string

const (
	TypeString    Type = "string"
	TypeTimestamp Type = "timestamp"
	TypeInteger   Type = "integer"
	TypeDouble    Type = "double"
)

// Column описывает одну колонку записи о нарушении
type Column struct {
	Name     string
	Type     Type
	Nullable bool
	// Derived - колонка вычисляется пайплайном и во входном файле не ожидается
	Derived bool
}

const (
	ViolationID   = "violation_id"
	Timestamp     = "timestamp"
	Location      = "location"
	ViolationType = "violation_type"
	VehicleType   = "vehicle_type"
	Severity      = "severity"
	Latitude      = "latitude"
	Longitude     = "longitude"
)

// Columns - единственный источник истины о порядке и типах колонок.
// Timestamp во входных данных читается как строка и разбирается стадией очистки.
var Columns = []Column{
	{Name: ViolationID, Type: TypeString, Nullable: true},
	{Name: Timestamp, Type: TypeTimestamp, Nullable: true},
	{Name: Location, Type: TypeString, Nullable: true},
	{Name: ViolationType, Type: TypeString, Nullable: true},
	{Name: VehicleType, Type: TypeString, Nullable: true},
	{Name: Severity, Type: TypeInteger, Nullable: true},
	{Name: Latitude, Type: TypeDouble, Nullable: true, Derived: true},
	{Name: Longitude, Type: TypeDouble, Nullable: true, Derived: true},
}

// Names возвращает имена всех колонок в объявленном порядке
func Names() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// InputColumns возвращает колонки, которые должны присутствовать во входном файле
func InputColumns() []Column {
	cols := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		if !c.Derived {
			cols = append(cols, c)
		}
	}
	return cols
}

// Lookup ищет колонку по имени
func Lookup(name string) (Column, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HeaderError - заголовок файла не соответствует объявленной схеме
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValidateHeader сопоставляет заголовок CSV с объявленной схемой и возвращает индекс каждой входной колонки.
// Лишние колонки допускаются и возвращаются отдельно.
func ValidateHeader(header []string) (map[string]int, []string, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[name]; dup {
			return nil, nil, fmt.Errorf("duplicate column %q in header", name)
		}
		index[name] = i
	}

	var missing []string
	known := make(map[string]struct{}, len(Columns))
	for _, c := range InputColumns() {
		known[c.Name] = struct{}{}
		if _, ok := index[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &HeaderError{Missing: missing}
	}

	var extra []string
	for _, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := known[name]; !ok {
			extra = append(extra, name)
		}
	}
	return index, extra, nil
}
