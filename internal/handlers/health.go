package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/eliaswendt/mcfp-optimizer/internal/models"
)

// GetHealth handles GET /health
// Reports whether the path store is reachable
func (h *PathHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := models.HealthStatus{
		Status:    "ok",
		Database:  "connected",
		Timestamp: h.now().UTC(),
	}
	code := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		status.Status = "error"
		status.Database = "disconnected"
		status.Error = err.Error()
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
