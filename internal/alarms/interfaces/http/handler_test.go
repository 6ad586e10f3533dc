package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	alarmapp "plantwatch/internal/alarms/application"
	alarms "plantwatch/internal/alarms/domain"
	"plantwatch/internal/auth"
)

type stubStore struct {
	alarms     []alarms.Alarm
	lastFilter alarms.ListFilter
	ackOK      bool
	ackedID    string
	ackedActor string
}

func (s *stubStore) Create(context.Context, *alarms.Alarm) error { return nil }

func (s *stubStore) FindOpenBySensor(context.Context, string) (*alarms.Alarm, error) {
	return nil, nil
}

func (s *stubStore) Acknowledge(_ context.Context, id, actor string, _ time.Time) (bool, error) {
	s.ackedID = id
	s.ackedActor = actor
	return s.ackOK, nil
}

func (s *stubStore) List(_ context.Context, filter alarms.ListFilter) ([]alarms.Alarm, error) {
	s.lastFilter = filter
	return s.alarms, nil
}

func newTestHandler(t *testing.T, store alarms.Store) *Handler {
	t.Helper()
	service, err := alarmapp.NewService(store)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func operatorContext(r *http.Request) *http.Request {
	ctx := auth.WithIdentity(r.Context(), "user-1", "op@plantwatch.local", auth.RoleOperator)
	return r.WithContext(ctx)
}

func TestListAlarms(t *testing.T) {
	store := &stubStore{alarms: []alarms.Alarm{
		{ID: "a1", SensorID: "sensor-1", Severity: alarms.SeverityHigh, Message: "m"},
	}}
	handler := newTestHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms?acknowledged=false", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastFilter.Acknowledged == nil || *store.lastFilter.Acknowledged {
		t.Fatal("expected acknowledged=false filter")
	}
	var got []alarms.Alarm
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestListAlarmsEmptyIsArray(t *testing.T) {
	handler := newTestHandler(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestListAlarmsBadFilter(t *testing.T) {
	handler := newTestHandler(t, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms?acknowledged=maybe", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAckAlarm(t *testing.T) {
	store := &stubStore{ackOK: true}
	handler := newTestHandler(t, store)

	req := operatorContext(httptest.NewRequest(http.MethodPost, "/api/v1/alarms/a1/ack", nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.ackedID != "a1" {
		t.Fatalf("expected ack for a1, got %q", store.ackedID)
	}
	if store.ackedActor != "user-1" {
		t.Fatalf("expected actor user-1, got %q", store.ackedActor)
	}
}

func TestAckAlarmNotFound(t *testing.T) {
	handler := newTestHandler(t, &stubStore{ackOK: false})

	req := operatorContext(httptest.NewRequest(http.MethodPost, "/api/v1/alarms/missing/ack", nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAckAlarmRequiresIdentity(t *testing.T) {
	handler := newTestHandler(t, &stubStore{ackOK: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alarms/a1/ack", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAckAlarmMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &stubStore{ackOK: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alarms/a1/ack", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
