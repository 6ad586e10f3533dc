package application

import (
	"math"

	sensors "plantwatch/internal/sensors/domain"
)

// Rand is the randomness source for value synthesis. *math/rand.Rand
// satisfies it; tests substitute a deterministic source.
type Rand interface {
	Float64() float64
}

// Generator synthesizes plausible readings for sensors. The range is keyed
// by the sensor's unit label; unknown units fall back to the sensor's own
// thresholds widened by a margin so out-of-range readings stay reachable.
type Generator struct {
	units            map[string]UnitRange
	fallbackMargin   float64
	fallbackDecimals int
}

// NewGenerator constructs a generator from config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		units:            cfg.Units,
		fallbackMargin:   cfg.FallbackMargin,
		fallbackDecimals: cfg.FallbackDecimals,
	}
}

// Value produces one reading for the sensor.
func (g *Generator) Value(sensor sensors.Sensor, rng Rand) float64 {
	if r, ok := g.units[sensor.Unit]; ok {
		return randomBetween(rng, r.Min, r.Max, r.Decimals)
	}
	return randomBetween(rng,
		sensor.MinThreshold-g.fallbackMargin,
		sensor.MaxThreshold+g.fallbackMargin,
		g.fallbackDecimals)
}

func randomBetween(rng Rand, min, max float64, decimals int) float64 {
	value := rng.Float64()*(max-min) + min
	scale := math.Pow10(decimals)
	return math.Round(value*scale) / scale
}
