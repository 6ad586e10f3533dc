package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	alarms "plantwatch/internal/alarms/domain"
	sensors "plantwatch/internal/sensors/domain"
)

type fakeStore struct {
	mu      sync.Mutex
	open    map[string]*alarms.Alarm
	created []alarms.Alarm
	acked   []alarms.Alarm
	listErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{open: make(map[string]*alarms.Alarm)}
}

func (s *fakeStore) Create(_ context.Context, alarm *alarms.Alarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *alarm)
	s.open[alarm.SensorID] = alarm
	return nil
}

func (s *fakeStore) FindOpenBySensor(_ context.Context, sensorID string) (*alarms.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alarm, ok := s.open[sensorID]; ok {
		copied := *alarm
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) Acknowledge(_ context.Context, id, actor string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sensorID, alarm := range s.open {
		if alarm.ID == id {
			alarm.Acknowledged = true
			alarm.AckedBy = actor
			alarm.AckedAt = at
			s.acked = append(s.acked, *alarm)
			delete(s.open, sensorID)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) List(_ context.Context, filter alarms.ListFilter) ([]alarms.Alarm, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []alarms.Alarm
	for i := len(s.created) - 1; i >= 0; i-- {
		alarm := s.created[i]
		if filter.Acknowledged != nil {
			_, stillOpen := s.open[alarm.SensorID]
			if *filter.Acknowledged == stillOpen {
				continue
			}
		}
		result = append(result, alarm)
	}
	return result, nil
}

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

func testSensor() sensors.Sensor {
	return sensors.Sensor{
		ID:           "sensor-1",
		Name:         "Boiler temperature",
		Unit:         "°C",
		MinThreshold: 10,
		MaxThreshold: 70,
	}
}

func TestRaiseIfAbsentCreatesAlarm(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(store, WithClock(fixedClock{at: now}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := service.RaiseIfAbsent(context.Background(), testSensor(), 85, alarms.SeverityHigh)
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	if !created {
		t.Fatal("expected alarm to be created")
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 alarm, got %d", len(store.created))
	}
	alarm := store.created[0]
	if alarm.ID == "" {
		t.Fatal("expected generated id")
	}
	if alarm.Severity != alarms.SeverityHigh {
		t.Fatalf("expected HIGH, got %s", alarm.Severity)
	}
	if !alarm.CreatedAt.Equal(now) {
		t.Fatalf("expected created at %v, got %v", now, alarm.CreatedAt)
	}
	if alarm.Message == "" {
		t.Fatal("expected derived message")
	}
}

func TestRaiseIfAbsentDeduplicates(t *testing.T) {
	store := newFakeStore()
	service, err := NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	created, err := service.RaiseIfAbsent(ctx, testSensor(), 85, alarms.SeverityHigh)
	if err != nil || !created {
		t.Fatalf("first raise: created=%v err=%v", created, err)
	}

	// Further out-of-range ticks must not create more alarms, regardless of
	// severity.
	for i := 0; i < 5; i++ {
		created, err := service.RaiseIfAbsent(ctx, testSensor(), 95, alarms.SeverityHigh)
		if err != nil {
			t.Fatalf("raise %d: %v", i, err)
		}
		if created {
			t.Fatalf("raise %d: expected dedup, alarm was created", i)
		}
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 alarm, got %d", len(store.created))
	}

	// After acknowledgment the next violation opens a fresh alarm.
	if err := service.Acknowledge(ctx, store.created[0].ID, "operator-1"); err != nil {
		t.Fatalf("ack: %v", err)
	}
	created, err = service.RaiseIfAbsent(ctx, testSensor(), 85, alarms.SeverityMedium)
	if err != nil || !created {
		t.Fatalf("raise after ack: created=%v err=%v", created, err)
	}
	if len(store.created) != 2 {
		t.Fatalf("expected 2 alarms, got %d", len(store.created))
	}
}

func TestAcknowledgeNotFoundUniform(t *testing.T) {
	store := newFakeStore()
	service, err := NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	// Absent alarm.
	if err := service.Acknowledge(ctx, "missing", "operator-1"); !errors.Is(err, alarms.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Already-acknowledged alarm reports the same way.
	if _, err := service.RaiseIfAbsent(ctx, testSensor(), 85, alarms.SeverityHigh); err != nil {
		t.Fatalf("raise: %v", err)
	}
	id := store.created[0].ID
	if err := service.Acknowledge(ctx, id, "operator-1"); err != nil {
		t.Fatalf("first ack: %v", err)
	}
	if err := service.Acknowledge(ctx, id, "operator-2"); !errors.Is(err, alarms.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAcknowledgeConcurrentSingleWinner(t *testing.T) {
	store := newFakeStore()
	service, err := NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	if _, err := service.RaiseIfAbsent(ctx, testSensor(), 85, alarms.SeverityHigh); err != nil {
		t.Fatalf("raise: %v", err)
	}
	id := store.created[0].ID

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- service.Acknowledge(ctx, id, "operator-1")
		}()
	}
	wg.Wait()
	close(results)

	var successes, notFound int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, alarms.ErrNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 success, got %d", successes)
	}
	if notFound != attempts-1 {
		t.Fatalf("expected %d not-found results, got %d", attempts-1, notFound)
	}
}
