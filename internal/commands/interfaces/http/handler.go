package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"plantwatch/internal/audit"
	"plantwatch/internal/auth"
	commands "plantwatch/internal/commands/domain"
	"plantwatch/internal/observability/metrics"
)

// CommandStore persists queued commands.
type CommandStore interface {
	Create(ctx context.Context, cmd *commands.Command) error
}

// Handler accepts operator command submissions.
type Handler struct {
	store CommandStore
	audit audit.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(store CommandStore, auditLogger audit.Logger) (*Handler, error) {
	if store == nil {
		return nil, errors.New("commands handler: nil store")
	}
	return &Handler{store: store, audit: auditLogger}, nil
}

type commandRequest struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

type commandResponse struct {
	Status     string           `json:"status"`
	ReceivedAt time.Time        `json:"received_at"`
	Command    commands.Command `json:"command"`
}

// ServeHTTP handles POST /api/v1/commands.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid command", http.StatusBadRequest)
		return
	}

	actor := auth.SubjectFromContext(r.Context())
	if actor == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if req.Target == "" {
		req.Target = commands.TargetSystem
	}
	cmd := &commands.Command{
		ID:       uuid.NewString(),
		Type:     commands.CommandType(req.Type),
		Target:   req.Target,
		IssuedBy: actor,
	}
	if err := cmd.Validate(); err != nil {
		http.Error(w, "invalid command", http.StatusBadRequest)
		return
	}

	if err := h.store.Create(r.Context(), cmd); err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	metrics.IncCommandRequest()
	h.logAudit(r, cmd, actor)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(commandResponse{
		Status:     "queued",
		ReceivedAt: time.Now().UTC(),
		Command:    *cmd,
	})
}

func (h *Handler) logAudit(r *http.Request, cmd *commands.Command, actor string) {
	if h.audit == nil {
		return
	}
	metadata, _ := json.Marshal(map[string]string{"type": string(cmd.Type), "target": cmd.Target})
	entry := audit.Entry{
		Actor:        actor,
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "command.queue",
		ResourceType: "command",
		ResourceID:   cmd.ID,
		Metadata:     metadata,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	}
	_ = h.audit.Log(r.Context(), entry)
}
