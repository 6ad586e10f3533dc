package application

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	alarms "plantwatch/internal/alarms/domain"
	"plantwatch/internal/observability/metrics"
	sensors "plantwatch/internal/sensors/domain"
)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Service owns alarm creation (with deduplication) and the acknowledgment
// transition.
type Service struct {
	store  alarms.Store
	clock  Clock
	logger *log.Logger
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs an alarm service.
func NewService(store alarms.Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("alarms: nil store")
	}
	service := &Service{store: store, clock: systemClock{}}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// RaiseIfAbsent creates an open alarm for the sensor unless one is already
// open, in which case the new severity and value are dropped. An open alarm
// is never escalated to a worse severity. Returns true when an alarm was
// created.
//
// The check-then-insert is safe without a transaction: alarm creation only
// happens inside non-overlapping ticks, and the acknowledgment path only
// closes alarms. Observing a just-acknowledged alarm as absent and opening a
// fresh one is correct behavior.
func (s *Service) RaiseIfAbsent(ctx context.Context, sensor sensors.Sensor, value float64, severity alarms.Severity) (bool, error) {
	if s == nil {
		return false, errors.New("alarms: nil service")
	}
	if !severity.Valid() {
		return false, errors.New("alarms: invalid severity")
	}
	if err := sensor.Validate(); err != nil {
		return false, err
	}

	open, err := s.store.FindOpenBySensor(ctx, sensor.ID)
	if err != nil {
		return false, err
	}
	if open != nil {
		return false, nil
	}

	alarm := &alarms.Alarm{
		ID:        uuid.NewString(),
		SensorID:  sensor.ID,
		Severity:  severity,
		Message:   alarms.BuildMessage(sensor, value),
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.store.Create(ctx, alarm); err != nil {
		return false, err
	}
	metrics.IncAlarmRaised(string(severity))
	if s.logger != nil {
		s.logger.Printf("alarm raised: sensor=%s severity=%s value=%v", sensor.ID, severity, value)
	}
	return true, nil
}

// Acknowledge transitions an open alarm to acknowledged, recording the actor
// and time. A missing alarm and an already-acknowledged one are reported
// identically as alarms.ErrNotFound.
func (s *Service) Acknowledge(ctx context.Context, id, actor string) error {
	if s == nil {
		return errors.New("alarms: nil service")
	}
	if id == "" {
		return errors.New("alarms: alarm id required")
	}
	if actor == "" {
		return errors.New("alarms: actor required")
	}
	ok, err := s.store.Acknowledge(ctx, id, actor, s.clock.Now().UTC())
	if err != nil {
		metrics.IncAlarmAck("error")
		return err
	}
	if !ok {
		metrics.IncAlarmAck("not_found")
		return alarms.ErrNotFound
	}
	metrics.IncAlarmAck("acknowledged")
	return nil
}

// List returns alarms newest first, optionally filtered by acknowledgment
// state, capped at the store's listing limit.
func (s *Service) List(ctx context.Context, acknowledged *bool) ([]alarms.Alarm, error) {
	if s == nil {
		return nil, errors.New("alarms: nil service")
	}
	return s.store.List(ctx, alarms.ListFilter{Acknowledged: acknowledged})
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
