package pipeline

import (
	"time"

	"github.com/shenikar/violation_pipeline/internal/engine"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/sirupsen/logrus"
)

// Cleaner - стадия очистки. Не выполняет ввод-вывод и не изменяет входные записи.
type Cleaner struct {
	sess *engine.Session
}

func NewCleaner(sess *engine.Session) *Cleaner {
	return &Cleaner{sess: sess}
}

// Clean нормализует и фильтрует записи. Порядок шагов важен:
//  1. null vehicle_type заменяется значением по умолчанию;
//  2. записи без violation_id отбрасываются;
//  3. timestamp разбирается по фиксированному шаблону, ошибка разбора дает null;
//  4. остаются только разрешенные типы нарушений.
//
// Отсутствие timestamp само по себе запись не исключает.
func (c *Cleaner) Clean(records []*models.ViolationRecord) ([]*models.ViolationRecord, models.CleanStats) {
	stats := models.CleanStats{Input: len(records)}

	// 1. Значение по умолчанию для vehicle_type
	defaulted := make([]*models.ViolationRecord, len(records))
	for i, r := range records {
		rec := r.Clone()
		if rec.VehicleType == nil {
			rec.VehicleType = models.Ptr(c.sess.DefaultVehicleType())
			stats.VehicleTypeDefaulted++
		}
		defaulted[i] = rec
	}

	// 2. Первичный ключ
	withID := defaulted[:0]
	for _, rec := range defaulted {
		if rec.ViolationID == nil {
			stats.DroppedMissingID++
			continue
		}
		withID = append(withID, rec)
	}

	// 3. Разбор времени
	for _, rec := range withID {
		if rec.RawTimestamp == nil {
			continue
		}
		ts, ok := c.parseTimestamp(*rec.RawTimestamp)
		if ok {
			rec.Timestamp = &ts
		} else {
			rec.Timestamp = nil
			stats.TimestampsNulled++
		}
		rec.RawTimestamp = nil
	}

	// 4. Разрешенные типы нарушений
	cleaned := make([]*models.ViolationRecord, 0, len(withID))
	for _, rec := range withID {
		if rec.ViolationType == nil || !c.sess.Allowed(*rec.ViolationType) {
			stats.DroppedDisallowedType++
			continue
		}
		cleaned = append(cleaned, rec)
	}
	stats.Output = len(cleaned)

	c.sess.Log().WithFields(logrus.Fields{
		"stage":                   "clean",
		"input":                   stats.Input,
		"output":                  stats.Output,
		"vehicle_type_defaulted":  stats.VehicleTypeDefaulted,
		"dropped_missing_id":      stats.DroppedMissingID,
		"dropped_disallowed_type": stats.DroppedDisallowedType,
		"timestamps_nulled":       stats.TimestampsNulled,
	}).Debug("Cleaning stage completed")

	return cleaned, stats
}

// parseTimestamp строго разбирает время: значение должно совпадать с шаблоном целиком,
// без дробных секунд и лишнего текста.
func (c *Cleaner) parseTimestamp(raw string) (time.Time, bool) {
	layout := c.sess.TimestampLayout()
	ts, err := time.ParseInLocation(layout, raw, c.sess.Location())
	if err != nil {
		return time.Time{}, false
	}
	if ts.Format(layout) != raw {
		return time.Time{}, false
	}
	return ts, true
}
