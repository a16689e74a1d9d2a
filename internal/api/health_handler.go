package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/crm-dashboard/internal/pkg/httputil"
)

// HealthStatus is the overall health report.
type HealthStatus struct {
	Status string                    `json:"status"` // "healthy" or "degraded"
	Uptime string                    `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck is the health of a single dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "not_configured"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthChecker probes the service's dependencies. Any of them may be nil,
// in which case the check reports "not_configured".
type HealthChecker struct {
	redisClient *redis.Client
	startTime   time.Time
}

// NewHealthChecker creates a HealthChecker.
func NewHealthChecker(redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{
		redisClient: redisClient,
		startTime:   time.Now(),
	}
}

// Check probes each dependency with a short deadline.
func (hc *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "healthy",
		Uptime: time.Since(hc.startTime).Round(time.Second).String(),
		Checks: make(map[string]ComponentCheck),
	}

	if hc.redisClient == nil {
		status.Checks["redis"] = ComponentCheck{Status: "not_configured"}
		return status
	}

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := hc.redisClient.Ping(probeCtx).Err(); err != nil {
		status.Status = "degraded"
		status.Checks["redis"] = ComponentCheck{
			Status:  "down",
			Message: fmt.Sprintf("ping failed: %v", err),
		}
		return status
	}
	status.Checks["redis"] = ComponentCheck{
		Status:  "up",
		Latency: time.Since(start).Round(time.Millisecond).String(),
	}
	return status
}

// SetHealthChecker attaches the dependency prober used by /health.
func (h *Handlers) SetHealthChecker(hc *HealthChecker) {
	h.health = hc
}

// HealthCheck reports service and dependency health. The endpoint always
// answers 200; a degraded dependency is reflected in the body, not the
// status code, so load balancers don't pull a node that can still serve
// from its in-memory fallbacks.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		httputil.OK(w, HealthStatus{Status: "healthy", Checks: map[string]ComponentCheck{}})
		return
	}
	httputil.OK(w, h.health.Check(r.Context()))
}
