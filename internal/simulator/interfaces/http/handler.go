package http

import (
	"encoding/json"
	"errors"
	"net/http"

	simulator "plantwatch/internal/simulator/application"
)

// Handler exposes a manual tick trigger for operators.
type Handler struct {
	scheduler *simulator.Scheduler
}

// NewHandler constructs a handler.
func NewHandler(scheduler *simulator.Scheduler) (*Handler, error) {
	if scheduler == nil {
		return nil, errors.New("simulator handler: nil scheduler")
	}
	return &Handler{scheduler: scheduler}, nil
}

// ServeHTTP handles POST /api/v1/simulator/run. A run that collides with an
// in-flight tick is skipped and reported as a conflict.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	executed := h.scheduler.RunOnce(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !executed {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "skipped"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "completed"})
}
