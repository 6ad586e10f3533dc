package alarms

import (
	"strings"
	"testing"

	sensors "plantwatch/internal/sensors/domain"
)

func TestBuildMessage(t *testing.T) {
	sensor := sensors.Sensor{
		ID:           "sensor-1",
		Name:         "Boiler temperature",
		Unit:         "°C",
		MinThreshold: 10,
		MaxThreshold: 70,
	}
	message := BuildMessage(sensor, 75.5)
	for _, want := range []string{"Boiler temperature", "75.5", "°C", "10", "70"} {
		if !strings.Contains(message, want) {
			t.Fatalf("message %q missing %q", message, want)
		}
	}
}
