package http

import (
	"encoding/json"
	"errors"
	"net/http"

	measurementapp "plantwatch/internal/measurements/application"
	measurements "plantwatch/internal/measurements/domain"
)

// Handler serves the latest-reading view.
type Handler struct {
	service *measurementapp.LatestService
}

// NewHandler constructs a handler.
func NewHandler(service *measurementapp.LatestService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("measurements handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/measurements/latest.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, err := h.service.Latest(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if view == nil {
		view = []measurements.LatestReading{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}
