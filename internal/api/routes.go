package api

import (
	"net/http"
	"time"

	"movers/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)

	// Aggregation endpoints
	s.router.HandleFunc("/api/movers", s.handleMovers)
	s.router.HandleFunc("/api/count", s.handleCount)

	// Dashboard page
	s.router.HandleFunc("/", s.handleDashboard)
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	WriteJSON(w, HealthResponse{
		Status:    "ok",
		Version:   version.Info(),
		Timestamp: time.Now().UTC(),
	}, http.StatusOK)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	status := "ready"
	code := http.StatusOK
	if s.client == nil {
		status = "unconfigured"
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, map[string]string{"status": status}, code)
}
