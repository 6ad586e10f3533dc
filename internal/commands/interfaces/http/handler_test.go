package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plantwatch/internal/auth"
	commands "plantwatch/internal/commands/domain"
)

type stubCommandStore struct {
	created []commands.Command
	err     error
}

func (s *stubCommandStore) Create(_ context.Context, cmd *commands.Command) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *cmd)
	return nil
}

func postCommand(t *testing.T, handler *Handler, body string, identity bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/commands", strings.NewReader(body))
	if identity {
		ctx := auth.WithIdentity(req.Context(), "user-1", "op@plantwatch.local", auth.RoleOperator)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueueCommand(t *testing.T) {
	store := &stubCommandStore{}
	handler, err := NewHandler(store, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := postCommand(t, handler, `{"type":"START_FAN"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored command, got %d", len(store.created))
	}
	cmd := store.created[0]
	if cmd.Type != commands.TypeStartFan {
		t.Fatalf("expected START_FAN, got %s", cmd.Type)
	}
	if cmd.Target != commands.TargetSystem {
		t.Fatalf("expected default target SYSTEM, got %q", cmd.Target)
	}
	if cmd.IssuedBy != "user-1" {
		t.Fatalf("expected issuer user-1, got %q", cmd.IssuedBy)
	}

	var resp struct {
		Status  string           `json:"status"`
		Command commands.Command `json:"command"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "queued" {
		t.Fatalf("expected queued status, got %q", resp.Status)
	}
	if resp.Command.ID == "" {
		t.Fatal("expected generated command id")
	}
}

func TestQueueCommandInvalidType(t *testing.T) {
	handler, err := NewHandler(&stubCommandStore{}, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	for _, body := range []string{
		`{"type":"SELF_DESTRUCT"}`,
		`{"type":""}`,
		`not json`,
	} {
		rec := postCommand(t, handler, body, true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestQueueCommandRequiresIdentity(t *testing.T) {
	handler, err := NewHandler(&stubCommandStore{}, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := postCommand(t, handler, `{"type":"RESET"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestQueueCommandRejectsWrongTarget(t *testing.T) {
	handler, err := NewHandler(&stubCommandStore{}, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	rec := postCommand(t, handler, `{"type":"RESET","target":"PUMP_4"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
