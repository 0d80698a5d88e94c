package observability

import (
	"net/http"
	"time"

	"github.com/platinummonkey/switchyard/pkg/httputil"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker answers the process liveness probe
type HealthChecker struct {
	startedAt time.Time
	version   string
	now       func() time.Time
}

// NewHealthChecker creates a health checker whose uptime counts from now
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		startedAt: time.Now(),
		version:   version,
		now:       time.Now,
	}
}

// LivenessStatus is the body of the liveness probe
type LivenessStatus struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	Version   string  `json:"version,omitempty"`
}

// Uptime returns how long the process has been serving
func (h *HealthChecker) Uptime() time.Duration {
	return h.now().Sub(h.startedAt)
}

// Status builds the liveness body
func (h *HealthChecker) Status() LivenessStatus {
	return LivenessStatus{
		Status:    StatusHealthy,
		Uptime:    h.Uptime().Seconds(),
		Timestamp: httputil.Timestamp(h.now()),
		Version:   h.version,
	}
}

// Liveness returns a simple liveness probe (always returns 200 if server is running).
// It is unrelated to the health of any plugin.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.Status())
}
