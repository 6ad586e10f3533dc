package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	sensors "plantwatch/internal/sensors/domain"
)

// SensorLister reads the sensor set.
type SensorLister interface {
	List(ctx context.Context) ([]sensors.Sensor, error)
}

// Handler serves the read-only sensor listing.
type Handler struct {
	repo SensorLister
}

// NewHandler constructs a handler.
func NewHandler(repo SensorLister) (*Handler, error) {
	if repo == nil {
		return nil, errors.New("sensors handler: nil repository")
	}
	return &Handler{repo: repo}, nil
}

// ServeHTTP handles GET /api/v1/sensors.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.repo.List(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []sensors.Sensor{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}
