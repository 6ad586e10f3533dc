package alarms

import (
	"context"
	"time"
)

// ListFilter narrows an alarm listing. A nil Acknowledged returns both open
// and acknowledged alarms.
type ListFilter struct {
	Acknowledged *bool
	Limit        int
}

// Store persists alarms.
type Store interface {
	// Create inserts a new open alarm.
	Create(ctx context.Context, alarm *Alarm) error
	// FindOpenBySensor returns the open alarm for a sensor, or nil.
	FindOpenBySensor(ctx context.Context, sensorID string) (*Alarm, error)
	// Acknowledge performs the conditional open-to-acknowledged transition
	// as a single store operation. It returns false when no open alarm with
	// that id exists.
	Acknowledge(ctx context.Context, id, actor string, at time.Time) (bool, error)
	// List returns alarms newest first.
	List(ctx context.Context, filter ListFilter) ([]Alarm, error)
}
