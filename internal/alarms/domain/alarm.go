package alarms

import (
	"fmt"
	"time"

	sensors "plantwatch/internal/sensors/domain"
)

// Alarm is one out-of-range event raised for a sensor. Severity and message
// are fixed at creation; acknowledgment only fills the ack fields.
type Alarm struct {
	ID           string    `json:"id"`
	SensorID     string    `json:"sensor_id"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
	AckedBy      string    `json:"acked_by,omitempty"`
	AckedAt      time.Time `json:"acked_at,omitempty"`

	// Joined sensor fields, populated on listing.
	SensorName string `json:"sensor_name,omitempty"`
	SensorUnit string `json:"sensor_unit,omitempty"`
}

// BuildMessage derives the human-readable alarm message from the reading
// that triggered it.
func BuildMessage(sensor sensors.Sensor, value float64) string {
	return fmt.Sprintf("%s out of range: %v%s (bounds %v-%v)",
		sensor.Name, value, sensor.Unit, sensor.MinThreshold, sensor.MaxThreshold)
}
