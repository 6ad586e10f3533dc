package measurements

import (
	"errors"
	"time"
)

// Measurement is one reading produced by a simulation tick. Rows are
// append-only and never mutated after insert.
type Measurement struct {
	ID         string    `json:"id"`
	SensorID   string    `json:"sensor_id"`
	Value      float64   `json:"value"`
	MeasuredAt time.Time `json:"measured_at"`
}

// Validate checks measurement invariants.
func (m Measurement) Validate() error {
	if m.ID == "" {
		return errors.New("measurement: empty id")
	}
	if m.SensorID == "" {
		return errors.New("measurement: empty sensor id")
	}
	if m.MeasuredAt.IsZero() {
		return errors.New("measurement: zero timestamp")
	}
	return nil
}

// LatestReading is the most recent measurement for a sensor, joined with the
// sensor descriptor. Value and MeasuredAt are nil for sensors that have not
// produced a measurement yet.
type LatestReading struct {
	SensorID     string     `json:"sensor_id"`
	Name         string     `json:"name"`
	Unit         string     `json:"unit"`
	MinThreshold float64    `json:"min_threshold"`
	MaxThreshold float64    `json:"max_threshold"`
	Value        *float64   `json:"value"`
	MeasuredAt   *time.Time `json:"measured_at"`
}
