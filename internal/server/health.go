package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// Health represents the complete health check response
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

// pinger is implemented by blob stores that can probe their backend.
type pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth provides a detailed health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.checkHealth(r.Context())

	statusCode := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) checkHealth(ctx context.Context) Health {
	health := Health{
		Status:     HealthStatusHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    s.cfg.Build.Version,
		Components: make(map[string]ComponentHealth),
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// Store: either in-memory (always up) or backed by Postgres.
	if s.cfg.DB != nil {
		start := time.Now()
		var one int
		err := s.cfg.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one)
		comp := ComponentHealth{Status: ComponentStatusUp, LatencyMs: float64(time.Since(start).Microseconds()) / 1000}
		if err != nil {
			comp = ComponentHealth{Status: ComponentStatusDown, Message: err.Error()}
			health.Status = HealthStatusUnhealthy
		}
		health.Components["database"] = comp
	} else {
		health.Components["database"] = ComponentHealth{Status: ComponentStatusUp, Message: "in-memory"}
	}

	// Blob store, if it exposes a probe.
	if p, ok := s.cfg.Blob.(pinger); ok {
		start := time.Now()
		comp := ComponentHealth{Status: ComponentStatusUp, LatencyMs: float64(time.Since(start).Microseconds()) / 1000}
		if err := p.Ping(ctx); err != nil {
			comp = ComponentHealth{Status: ComponentStatusDown, Message: err.Error()}
			if health.Status == HealthStatusHealthy {
				health.Status = HealthStatusDegraded
			}
		}
		health.Components["blob_store"] = comp
	} else {
		health.Components["blob_store"] = ComponentHealth{Status: ComponentStatusUp, Message: "in-memory"}
	}

	return health
}

// HandleReady provides a simple readiness probe for load balancers
func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var one int
		if err := s.cfg.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			http.Error(w, `{"status":"not_ready","message":"database unavailable"}`, http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleLive provides a liveness probe (is the process running?)
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}
