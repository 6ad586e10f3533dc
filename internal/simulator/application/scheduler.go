package application

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	alarms "plantwatch/internal/alarms/domain"
	measurements "plantwatch/internal/measurements/domain"
	"plantwatch/internal/observability/metrics"
	sensors "plantwatch/internal/sensors/domain"
)

// SensorSource reads the current sensor set, ordered by id.
type SensorSource interface {
	List(ctx context.Context) ([]sensors.Sensor, error)
}

// MeasurementWriter appends measurement rows.
type MeasurementWriter interface {
	Insert(ctx context.Context, m *measurements.Measurement) error
}

// AlarmRaiser creates a deduplicated alarm for an out-of-range reading.
type AlarmRaiser interface {
	RaiseIfAbsent(ctx context.Context, sensor sensors.Sensor, value float64, severity alarms.Severity) (bool, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Scheduler drives the periodic simulation. Each tick fetches the sensor
// set and processes sensors sequentially: synthesize a value, persist the
// measurement, classify it, and raise an alarm if needed. A single-slot
// guard skips a tick outright while the previous one is still running.
type Scheduler struct {
	sensors   SensorSource
	store     MeasurementWriter
	alarms    AlarmRaiser
	generator *Generator
	rng       Rand
	interval  time.Duration
	clock     Clock
	logger    *log.Logger

	running atomic.Bool
}

// SchedulerOption customizes the scheduler.
type SchedulerOption func(*Scheduler)

// WithClock assigns a clock.
func WithClock(clock Clock) SchedulerOption {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithRand assigns a randomness source.
func WithRand(rng Rand) SchedulerOption {
	return func(s *Scheduler) {
		s.rng = rng
	}
}

// NewScheduler constructs a scheduler.
func NewScheduler(source SensorSource, store MeasurementWriter, raiser AlarmRaiser, generator *Generator, cfg Config, logger *log.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if source == nil || store == nil || raiser == nil {
		return nil, errors.New("scheduler: nil dependency")
	}
	if generator == nil {
		return nil, errors.New("scheduler: nil generator")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scheduler := &Scheduler{
		sensors:   source,
		store:     store,
		alarms:    raiser,
		generator: generator,
		interval:  cfg.TickInterval,
		clock:     systemClock{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(scheduler)
	}
	if scheduler.rng == nil {
		scheduler.rng = newSystemRand()
	}
	return scheduler, nil
}

// Start runs the tick loop until the context is canceled. Tick failures are
// logged and retried on the next cycle; nothing here is fatal.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if s.logger != nil {
		s.logger.Printf("simulator started: tick=%s", s.interval)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single tick unless one is already running, in which
// case it reports false and does nothing. The guard is a non-blocking
// try-acquire: overlapping cycles are skipped, never queued.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if s == nil {
		return false
	}
	if !s.running.CompareAndSwap(false, true) {
		metrics.ObserveTick("skipped", 0)
		return false
	}
	defer s.running.Store(false)
	s.tick(ctx)
	return true
}

func (s *Scheduler) tick(ctx context.Context) {
	start := s.clock.Now()

	sensorSet, err := s.sensors.List(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("tick aborted, sensor fetch failed: %v", err)
		}
		metrics.ObserveTick("error", s.clock.Now().Sub(start))
		return
	}

	for _, sensor := range sensorSet {
		if err := s.processSensor(ctx, sensor); err != nil && s.logger != nil {
			s.logger.Printf("tick sensor error: sensor=%s err=%v", sensor.ID, err)
		}
	}

	metrics.IncTickSensors(len(sensorSet))
	metrics.ObserveTick("success", s.clock.Now().Sub(start))
}

func (s *Scheduler) processSensor(ctx context.Context, sensor sensors.Sensor) error {
	if err := sensor.Validate(); err != nil {
		return err
	}

	value := s.generator.Value(sensor, s.rng)

	measurement := &measurements.Measurement{
		ID:         uuid.NewString(),
		SensorID:   sensor.ID,
		Value:      value,
		MeasuredAt: s.clock.Now().UTC(),
	}
	if err := s.store.Insert(ctx, measurement); err != nil {
		return err
	}
	metrics.IncMeasurementWritten()

	severity, ok := alarms.ClassifySeverity(value, sensor.MinThreshold, sensor.MaxThreshold)
	if !ok {
		return nil
	}
	_, err := s.alarms.RaiseIfAbsent(ctx, sensor, value, severity)
	return err
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
