package handler

import (
	"net/http"
	"time"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	environment string
}

// NewHealthHandler creates a HealthHandler that echoes the configured
// environment name.
func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{environment: environment}
}

// HandleHealth reports that the server is up.
//
// HTTP: GET /health
//
// Deliberately unauthenticated and database-free: load balancers poll this,
// and a health check that depends on the database turns every database
// hiccup into a full instance restart.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "Server is running!",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.environment,
	})
}
