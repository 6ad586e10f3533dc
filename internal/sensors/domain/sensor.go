package sensors

import "errors"

// Sensor describes a monitored sensor and its alert thresholds.
// Sensors are maintained externally and read-only to this service.
type Sensor struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	MinThreshold float64 `json:"min_threshold"`
	MaxThreshold float64 `json:"max_threshold"`
}

// Validate checks sensor invariants.
func (s Sensor) Validate() error {
	if s.ID == "" {
		return errors.New("sensor: empty id")
	}
	if s.Name == "" {
		return errors.New("sensor: empty name")
	}
	if s.MinThreshold >= s.MaxThreshold {
		return errors.New("sensor: min threshold must be below max threshold")
	}
	return nil
}
