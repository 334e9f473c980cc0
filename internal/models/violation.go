package models

import (
	"time"
)

// ViolationRecord представляет одно зафиксированное нарушение ПДД.
// Значение nil в любом поле-указателе означает null.
type ViolationRecord struct {
	ViolationID   *string    `json:"violation_id"`
	RawTimestamp  *string    `json:"-"`
	Timestamp     *time.Time `json:"timestamp"`
	Location      *string    `json:"location"`
	ViolationType *string    `json:"violation_type"`
	VehicleType   *string    `json:"vehicle_type"`
	Severity      *int       `json:"severity"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
}

// Clone возвращает глубокую копию записи
func (r *ViolationRecord) Clone() *ViolationRecord {
	return &ViolationRecord{
		ViolationID:   cloneOf(r.ViolationID),
		RawTimestamp:  cloneOf(r.RawTimestamp),
		Timestamp:     cloneOf(r.Timestamp),
		Location:      cloneOf(r.Location),
		ViolationType: cloneOf(r.ViolationType),
		VehicleType:   cloneOf(r.VehicleType),
		Severity:      cloneOf(r.Severity),
		Latitude:      cloneOf(r.Latitude),
		Longitude:     cloneOf(r.Longitude),
	}
}

// HasCoordinates сообщает, заполнены ли производные координаты
func (r *ViolationRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

func cloneOf[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr возвращает указатель на копию значения. Удобно для заполнения nullable-полей.
func Ptr[T any](v T) *T {
	return &v
}
