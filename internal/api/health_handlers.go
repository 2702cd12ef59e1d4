package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/marqed/marqed-server/internal/cache"
	"github.com/marqed/marqed-server/internal/service"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	dbHealth := s.checkDatabase(ctx)
	components["database"] = dbHealth
	if dbHealth.Status != "healthy" {
		overall = "unhealthy"
	}

	cacheHealth := s.checkCache()
	components["cache"] = cacheHealth
	if cacheHealth.Status == "unhealthy" {
		overall = "unhealthy"
	} else if cacheHealth.Status == "degraded" && overall == "healthy" {
		overall = "degraded"
	}

	// The embedder being down only degrades search, it does not take
	// the server out of rotation.
	embedderHealth := s.checkEmbedder(ctx)
	components["embedder"] = embedderHealth
	if embedderHealth.Status != "healthy" && overall == "healthy" {
		overall = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkDatabase verifies the sqlite store is accessible.
func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	if s.store == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "database not configured",
		}
	}

	start := time.Now()
	_, err := s.store.ListTags(ctx, "health-probe")
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: err.Error(),
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkCache verifies the result cache answers reads. A miss on the probe
// key is the expected outcome.
func (s *Server) checkCache() ComponentHealth {
	if s.cache == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "cache not configured",
		}
	}

	start := time.Now()
	var probe service.SearchResult
	err := s.cache.Get("health-probe", "probe", &probe)
	latency := time.Since(start)

	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: err.Error(),
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkEmbedder probes the embedding service when the client exposes a
// health check.
func (s *Server) checkEmbedder(ctx context.Context) ComponentHealth {
	type healthChecker interface {
		IsHealthy(ctx context.Context) bool
	}

	hc, ok := s.embedder.(healthChecker)
	if !ok {
		return ComponentHealth{
			Status:  "healthy",
			Message: "no health probe",
		}
	}

	start := time.Now()
	healthy := hc.IsHealthy(ctx)
	latency := time.Since(start)

	if !healthy {
		return ComponentHealth{
			Status:  "degraded",
			Latency: latency.String(),
			Message: "embedding service unreachable, semantic search disabled",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}
